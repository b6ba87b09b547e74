package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

// dbDir resolves the database directory: --db flag, then JARI_DB, then
// a fixed per-user default.
func dbDir(cmd *cobra.Command) (string, error) {
	if flag, _ := cmd.Flags().GetString("db"); flag != "" {
		return flag, nil
	}
	if env := os.Getenv("JARI_DB"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".jari"), nil
}

func openStore(cmd *cobra.Command) (*storage.BoltStore, error) {
	dir, err := dbDir(cmd)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return storage.Open(dir)
}

// withWriteTxn opens the store, runs fn in one write transaction, and
// commits on success or rolls back on error. A ConflictPending error is
// the one exception: the conflict records written alongside it are
// committed so that resolve can act on them, and the error is returned.
func withWriteTxn(cmd *cobra.Command, fn func(txn storage.Txn) error) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	txn, err := store.Begin(true)
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		var pending *jarierr.ConflictPendingError
		if errors.As(err, &pending) {
			if cerr := txn.Commit(); cerr != nil {
				return cerr
			}
			return err
		}
		_ = txn.Rollback()
		return err
	}
	return txn.Commit()
}

// withReadTxn opens the store, runs fn in one read-only transaction,
// and always rolls back (reads never commit).
func withReadTxn(cmd *cobra.Command, fn func(txn storage.Txn) error) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	txn, err := store.Begin(false)
	if err != nil {
		return err
	}
	defer txn.Rollback()
	return fn(txn)
}

func now() int64 { return types.Now() }
