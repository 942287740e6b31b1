package main

import (
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/drive"
	"github.com/meowdada/doclocker/ipfsutil"
	"github.com/meowdada/doclocker/options"
	"github.com/meowdada/doclocker/pinning"
	"github.com/meowdada/doclocker/pkg/kv"
	"github.com/pkg/errors"
)

// app holds the long lived collaborators every command needs.
type app struct {
	store  kv.Store
	client *pinning.Client
	drive  drive.Instance
	users  doclocker.Users
}

// storeHint explains the usual cause of a failed open: badger holds an
// exclusive lock on the store directory while serve runs.
const storeHint = "open store %s (stop a running doclocker serve first)"

// openApp opens the store for writing. Read only commands use
// openReadOnlyApp, which shares the directory with other readers but
// still not with a running serve.
func openApp() (*app, error) {
	store, err := kv.Open(cfg.Store.Dir, cfg.Store.InMemory, logger)
	if err != nil {
		return nil, errors.Wrapf(err, storeHint, cfg.Store.Dir)
	}
	return newApp(store)
}

func openReadOnlyApp() (*app, error) {
	if cfg.Store.InMemory {
		return openApp()
	}
	store, err := kv.OpenReadOnly(cfg.Store.Dir, logger)
	if err != nil {
		return nil, errors.Wrapf(err, storeHint, cfg.Store.Dir)
	}
	return newApp(store)
}

func newApp(store kv.Store) (*app, error) {

	// ipfs.timeout bounds each call inside the pinning client only.
	api, err := ipfsutil.NewAPI(cfg.IPFS.API, cfg.IPFS.Token, 0)
	if err != nil {
		store.Close()
		return nil, errors.Wrap(err, "connect ipfs api")
	}
	client := pinning.NewClient(api, options.Pin().SetTimeout(cfg.IPFS.Timeout))

	return &app{
		store:  store,
		client: client,
		drive:  drive.Open(store, client, options.OpenDrive().SetLogger(logger.Named("drive"))),
		users:  doclocker.NewUsers(store),
	}, nil
}

func (a *app) uploader() *doclocker.Uploader {
	return doclocker.NewUploader(a.client, a.drive, options.Upload().
		SetGateway(cfg.IPFS.Gateway).
		SetStoreTimeout(0).
		SetUnpinOrphans(cfg.Upload.UnpinOrphans).
		SetLogger(logger.Named("upload")),
	)
}

func (a *app) close() error {
	return a.store.Close()
}
