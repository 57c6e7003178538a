package dispatcher

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	runsBucket = []byte("runs")
	metaBucket = []byte("meta")
	latestKey  = []byte("latest_run")
)

// BboltStorage archives reports in a bbolt database
type BboltStorage struct {
	db  *bolt.DB
	log *zap.Logger
}

// NewBboltStorage opens (or creates) the archive at dbPath
func NewBboltStorage(dbPath string, logger *zap.Logger) (*BboltStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{runsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BboltStorage{db: db, log: logger.Named("store")}
	s.log.Info("report archive opened", zap.String("path", dbPath))

	return s, nil
}

// SaveReport stores r and marks it as the latest run
func (s *BboltStorage) SaveReport(r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.RunID, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(runsBucket).Put([]byte(r.RunID), data); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put(latestKey, []byte(r.RunID))
	})
}

// LoadReport returns the report for runID
func (s *BboltStorage) LoadReport(runID string) (*Report, error) {
	var r Report
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(runsBucket).Get([]byte(runID))
		if v == nil {
			return ErrReportNotFound
		}
		return json.Unmarshal(v, &r)
	})
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// ListReports returns every archived report, oldest first. Entries that
// fail to decode are logged and skipped.
func (s *BboltStorage) ListReports() ([]*Report, error) {
	var reports []*Report
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			var r Report
			if err := json.Unmarshal(v, &r); err != nil {
				s.log.Warn("skipping corrupt report", zap.ByteString("run", k), zap.Error(err))
				return nil
			}
			reports = append(reports, &r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sortReports(reports)
	return reports, nil
}

func (s *BboltStorage) LatestRunID() (string, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		id = string(tx.Bucket(metaBucket).Get(latestKey))
		return nil
	})
	return id, err
}

func (s *BboltStorage) Close() error {
	return s.db.Close()
}
