package maintenance

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/todo-manager-be/internal/services"
)

// pruneSpec runs the retention job nightly, off-peak.
const pruneSpec = "0 3 * * *"

// Pruner periodically removes audit entries past the retention window.
// It never touches user or todo data.
type Pruner struct {
	audit         *services.AuditService
	retentionDays int
	cron          *cron.Cron
}

// NewPruner creates a new Pruner.
func NewPruner(audit *services.AuditService, retentionDays int) *Pruner {
	return &Pruner{
		audit:         audit,
		retentionDays: retentionDays,
		cron:          cron.New(),
	}
}

// Run schedules the pruning job and starts the scheduler.
func (p *Pruner) Run() {
	if _, err := p.cron.AddFunc(pruneSpec, p.prune); err != nil {
		log.Error().Err(err).Msg("Failed to schedule audit pruning job")
		return
	}
	p.cron.Start()
	log.Info().Int("retention_days", p.retentionDays).Msg("Audit log pruner started")
}

// Stop halts the scheduler and waits for a running job to finish.
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Pruner) prune() {
	cutoff := time.Now().UTC().AddDate(0, 0, -p.retentionDays)
	removed, err := p.audit.PruneOlderThan(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune audit log")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Pruned audit log entries")
	}
}
