package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"tradingagents/internal/adapters/ai"
	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// Roles that keep their own reflection memory.
const (
	CollectionBull        = "bull_researcher"
	CollectionBear        = "bear_researcher"
	CollectionTrader      = "trader"
	CollectionInvestJudge = "invest_judge"
	CollectionRiskJudge   = "risk_judge"
)

// Lesson is a past market situation paired with the recommendation that, in
// hindsight, should have been made.
type Lesson struct {
	ID             string
	Situation      string
	Recommendation string
	Similarity     float32
}

// Store keeps per-role lessons in an embedded vector store and recalls them
// by situation similarity.
type Store struct {
	db          *chromem.DB
	embedder    ai.EmbeddingClient
	collections map[string]*chromem.Collection
	mu          sync.Mutex
	log         *logger.Logger
}

// Config controls store construction.
type Config struct {
	// PersistDir, when set, persists collections on disk so lessons survive
	// across runs. Empty means in-memory only.
	PersistDir string
}

// NewStore creates a reflection memory backed by the given embedding client.
func NewStore(cfg Config, embedder ai.EmbeddingClient) (*Store, error) {
	if embedder == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "embedding client is required")
	}

	var db *chromem.DB
	var err error

	if cfg.PersistDir != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(cfg.PersistDir, "memory.gob"), false)
		if err != nil {
			return nil, errors.Wrap(err, "create persistent memory db")
		}
	} else {
		db = chromem.NewDB()
	}

	return &Store{
		db:          db,
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
		log:         logger.Get().With("component", "memory"),
	}, nil
}

func (s *Store) collection(name string) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[name]; ok {
		return col, nil
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	}

	col, err := s.db.GetOrCreateCollection(name, nil, embeddingFunc)
	if err != nil {
		return nil, errors.Wrapf(err, "create memory collection %s", name)
	}

	s.collections[name] = col
	return col, nil
}

// AddLessons stores situation/recommendation pairs for a role.
func (s *Store) AddLessons(ctx context.Context, role string, lessons []Lesson) error {
	if len(lessons) == 0 {
		return nil
	}

	col, err := s.collection(role)
	if err != nil {
		return err
	}

	for _, lesson := range lessons {
		id := lesson.ID
		if id == "" {
			id = uuid.NewString()
		}
		err := col.AddDocument(ctx, chromem.Document{
			ID:      id,
			Content: lesson.Situation,
			Metadata: map[string]string{
				"recommendation": lesson.Recommendation,
				"stored_at":      time.Now().UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			return errors.Wrapf(err, "add lesson to %s", role)
		}
	}

	s.log.Debugw("stored lessons", "role", role, "count", len(lessons))
	return nil
}

// Recall returns up to topK past lessons most similar to the situation,
// ordered by similarity. An empty collection recalls nothing.
func (s *Store) Recall(ctx context.Context, role string, situation string, topK int) ([]Lesson, error) {
	if topK <= 0 {
		topK = 2
	}

	col, err := s.collection(role)
	if err != nil {
		return nil, err
	}

	if col.Count() == 0 {
		return nil, nil
	}
	if count := col.Count(); topK > count {
		topK = count
	}

	results, err := col.Query(ctx, situation, topK, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "query memory collection %s", role)
	}

	lessons := make([]Lesson, 0, len(results))
	for _, r := range results {
		lessons = append(lessons, Lesson{
			ID:             r.ID,
			Situation:      r.Content,
			Recommendation: r.Metadata["recommendation"],
			Similarity:     r.Similarity,
		})
	}

	return lessons, nil
}

// FormatLessons renders recalled lessons for inclusion in an agent prompt.
func FormatLessons(lessons []Lesson) string {
	if len(lessons) == 0 {
		return "No past memories found."
	}

	out := ""
	for i, lesson := range lessons {
		out += fmt.Sprintf("Past lesson %d: %s\n", i+1, lesson.Recommendation)
	}
	return out
}
