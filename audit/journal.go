// Package audit keeps the combat journal: every combat start and end is
// written to the database in batches off the simulation goroutine.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Config tunes the journal writer.
type Config struct {
	MapID         string
	BatchSize     int           // 0 = 100
	FlushInterval time.Duration // 0 = 2s
	Buffer        int           // 0 = 1024
	Logger        *zap.Logger
}

type entry struct {
	record *model.CombatRecord
	kills  []model.CombatKill
}

// Service writes journal entries asynchronously in batches.
type Service struct {
	db     *gorm.DB
	cfg    Config
	ch     chan entry
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a journal and starts its background worker.
func New(db *gorm.DB, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	svc := &Service{
		db:     db,
		cfg:    cfg,
		ch:     make(chan entry, cfg.Buffer),
		stopCh: make(chan struct{}),
		logger: cfg.Logger.Named("journal"),
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Record enqueues a combat start or end. Other events are ignored.
func (svc *Service) Record(session uuid.UUID, evt combat.Event) {
	rec := &model.CombatRecord{
		SessionID: session.String(),
		Event:     evt.EventType(),
		MapID:     svc.cfg.MapID,
	}
	var kills []model.CombatKill
	switch e := evt.(type) {
	case combat.CombatStarted:
	case combat.CombatEnded:
		rec.ExpPool = e.ExpPool
		rec.Award = e.Award
		for _, k := range e.Kills {
			kills = append(kills, model.CombatKill{
				SessionID: rec.SessionID,
				VictimID:  k.Victim.ID,
				KillerID:  k.Killer.ID,
				Level:     k.Level,
				Exp:       k.Exp,
			})
		}
	default:
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		svc.logger.Error("marshal journal payload", zap.Error(err))
		return
	}
	rec.Payload = datatypes.JSON(payload)

	select {
	case svc.ch <- entry{record: rec, kills: kills}:
	default:
		svc.logger.Warn("journal channel full, dropping entry",
			zap.String("event", rec.Event),
			zap.String("session", rec.SessionID))
	}
}

// Stop flushes what is queued and shuts the worker down. It waits until
// the worker is done or ctx expires.
func (svc *Service) Stop(ctx context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	done := make(chan struct{})
	go func() {
		svc.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		svc.logger.Warn("journal stop timed out", zap.Error(ctx.Err()))
	}
}

// Recent returns the newest records first.
func (svc *Service) Recent(ctx context.Context, limit int) ([]model.CombatRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []model.CombatRecord
	err := svc.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// Kills returns the kills credited in one combat.
func (svc *Service) Kills(ctx context.Context, session string) ([]model.CombatKill, error) {
	var out []model.CombatKill
	err := svc.db.WithContext(ctx).Where("session_id = ?", session).Order("id").Find(&out).Error
	return out, err
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]entry, 0, svc.cfg.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		records := make([]*model.CombatRecord, 0, len(batch))
		var kills []model.CombatKill
		for _, e := range batch {
			records = append(records, e.record)
			kills = append(kills, e.kills...)
		}
		err := svc.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&records).Error; err != nil {
				return err
			}
			if len(kills) > 0 {
				return tx.Create(&kills).Error
			}
			return nil
		})
		if err != nil {
			svc.logger.Error("journal batch write failed", zap.Int("records", len(records)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-svc.ch:
			batch = append(batch, e)
			if len(batch) >= svc.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case e := <-svc.ch:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}
