// Package storage persists job records.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v3"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
)

const jobPrefix = "job/"

var _ ports.JobLedger = (*BadgerLedger)(nil)

// BadgerLedger keeps one JSON document per job under job/<id>.
type BadgerLedger struct {
	db *badger.DB
}

// OpenBadger opens or creates the ledger directory at path.
func OpenBadger(path string) (*BadgerLedger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	path = filepath.Clean(path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	options := badger.DefaultOptions(path)
	options.SyncWrites = true
	options.Logger = nil

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return &BadgerLedger{db: db}, nil
}

func jobKey(id string) []byte {
	return []byte(jobPrefix + strings.TrimSpace(id))
}

func (l *BadgerLedger) Save(_ context.Context, job *domain.Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(jobKey(job.ID), raw)
	})
}

func (l *BadgerLedger) Get(_ context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(jobKey(id))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &job)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ports.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", id, err)
	}
	return &job, nil
}

func (l *BadgerLedger) List(_ context.Context, limit int) ([]domain.Job, error) {
	jobs := []domain.Job{}
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   50,
		})
		defer it.Close()

		prefix := []byte(jobPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var job domain.Job
			if err := json.Unmarshal(raw, &job); err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			jobs = append(jobs, job)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return newestFirst(jobs, limit), nil
}

func (l *BadgerLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
