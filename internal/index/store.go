package index

import (
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"riskrag/internal/corpus"
)

// snapshot is the persisted form of the index: the passage sequence and its
// token bags. Loading one and rebuilding statistics from it scores exactly
// like a fresh build over the same passages.
type snapshot struct {
	CorpusPath string
	Passages   []corpus.Passage
	DocTokens  [][]string
}

// Store owns the passage corpus and its BM25 index. Build runs at most once
// per process; afterwards the store is read-only and lock-free.
type Store struct {
	CorpusPath   string
	SnapshotPath string
	ChunkSize    int
	ChunkOverlap int

	once     sync.Once
	buildErr error
	bm25     *BM25

	logger *log.Logger
}

// NewStore prepares a store; no I/O happens until BuildOrLoad.
func NewStore(corpusPath, snapshotPath string, chunkSize, chunkOverlap int) *Store {
	return &Store{
		CorpusPath:   corpusPath,
		SnapshotPath: snapshotPath,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		logger:       log.New(log.Writer(), "[INDEX] ", log.LstdFlags),
	}
}

// NewStoreFromPassages builds an in-memory store over an already segmented
// corpus, for hosts that run their own segmenter. No snapshot is involved;
// BuildOrLoad on the result is a no-op.
func NewStoreFromPassages(passages []corpus.Passage) *Store {
	s := &Store{logger: log.New(log.Writer(), "[INDEX] ", log.LstdFlags)}
	s.once.Do(func() { s.bm25 = NewBM25(passages) })
	return s
}

// BuildOrLoad loads the persisted snapshot when one exists for this corpus
// path, otherwise segments the corpus, builds the index and persists it.
// Idempotent and safe for concurrent callers; a failure here is the one
// unrecoverable initialization error of the system.
func (s *Store) BuildOrLoad() error {
	s.once.Do(func() { s.buildErr = s.buildOrLoad() })
	return s.buildErr
}

func (s *Store) buildOrLoad() error {
	if s.SnapshotPath != "" {
		if snap, err := readSnapshot(s.SnapshotPath); err == nil {
			if snap.CorpusPath == s.CorpusPath {
				s.bm25 = newBM25FromTokens(snap.Passages, snap.DocTokens)
				s.logger.Printf("loaded snapshot %s (%d passages)", s.SnapshotPath, s.bm25.Len())
				return nil
			}
			s.logger.Printf("snapshot %s is for corpus %q, rebuilding", s.SnapshotPath, snap.CorpusPath)
		} else if !os.IsNotExist(err) {
			s.logger.Printf("snapshot %s unreadable (%v), rebuilding", s.SnapshotPath, err)
		}
	}

	passages, err := corpus.Load(s.CorpusPath, s.ChunkSize, s.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	s.bm25 = NewBM25(passages)
	s.logger.Printf("built index over %s (%d passages)", s.CorpusPath, s.bm25.Len())

	if s.SnapshotPath != "" {
		snap := snapshot{CorpusPath: s.CorpusPath, Passages: passages, DocTokens: s.bm25.docTokens}
		if err := writeSnapshot(s.SnapshotPath, snap); err != nil {
			// the in-memory index is intact; persisting is best effort
			s.logger.Printf("persist snapshot: %v", err)
		}
	}
	return nil
}

// Search proxies to the underlying index. Panics if BuildOrLoad has not
// succeeded; initialization order is the host's responsibility.
func (s *Store) Search(query string, k int) []Hit {
	return s.bm25.Search(query, k)
}

// Passages returns the indexed passages, read-only.
func (s *Store) Passages() []corpus.Passage { return s.bm25.Passages() }

func readSnapshot(path string) (snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return snapshot{}, err
	}
	defer f.Close()
	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func writeSnapshot(path string, snap snapshot) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
