package cmd

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jjenkins/poliwatch/internal/config"
	"github.com/jjenkins/poliwatch/internal/service"
	"github.com/jjenkins/poliwatch/internal/store"
)

// stores bundles the database handle and the stores built on it
type stores struct {
	db         *sql.DB
	members    *store.MemberStore
	votes      *store.VoteStore
	committees *store.CommitteeStore
	bills      *store.BillStore
	runs       *store.RunStore
}

// openStores connects, applies the schema and builds every store
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	policy, err := cfg.CutoverPolicy()
	if err != nil {
		return nil, err
	}

	slog.Info("connecting to database")
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{
		db:         db,
		members:    store.NewMemberStore(db, store.WithCutoverPolicy(policy)),
		votes:      store.NewVoteStore(db),
		committees: store.NewCommitteeStore(db),
		bills:      store.NewBillStore(db),
		runs:       store.NewRunStore(db),
	}, nil
}

func (s *stores) importer(metrics *service.IngestMetrics) *service.Importer {
	return service.NewImporter(service.NewParser(), service.Writers{
		Members:    s.members,
		Votes:      s.votes,
		Committees: s.committees,
		Bills:      s.bills,
		Runs:       s.runs,
	}, metrics, slog.Default())
}

func (s *stores) Close() error {
	return s.db.Close()
}
