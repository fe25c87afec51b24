package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/pkg/logger"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job operaciones que ejecuta el scheduler en cada disparo.
type Job interface {
	Create(ctx context.Context, name string) (*dto.BackupInfo, error)
	Cleanup(ctx context.Context, keep int) (int, error)
}

// Scheduler crea un respaldo y depura los antiguos según una expresión cron.
type Scheduler struct {
	sched   *cron.Cron
	job     Job
	keep    int
	timeout time.Duration
	log     *logger.Logger
}

// NewScheduler valida spec ("@daily", "0 3 * * *", "@every 6h", ...) y registra la tarea.
// keep < 1 desactiva la depuración.
func NewScheduler(job Job, spec string, keep int, loc *time.Location, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	if _, err := cronParser.Parse(spec); err != nil {
		return nil, fmt.Errorf("expresión cron inválida %q: %w", spec, err)
	}
	s := &Scheduler{
		sched:   cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		job:     job,
		keep:    keep,
		timeout: 10 * time.Minute,
		log:     log.Component("backup-scheduler"),
	}
	if _, err := s.sched.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("registrar respaldo programado: %w", err)
	}
	return s, nil
}

// Start arranca el cron en segundo plano.
func (s *Scheduler) Start() {
	s.sched.Start()
	s.log.Info().Time("next", s.Next()).Msg("respaldos programados")
}

// Stop detiene el cron y espera a que termine una ejecución en curso.
func (s *Scheduler) Stop() {
	<-s.sched.Stop().Done()
}

// Next próxima ejecución (cero si no arrancó).
func (s *Scheduler) Next() time.Time {
	entries := s.sched.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce ejecuta un ciclo: respaldo y, si corresponde, depuración.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	info, err := s.job.Create(ctx, "")
	if err != nil {
		return err
	}
	deleted := 0
	if s.keep > 0 {
		if deleted, err = s.job.Cleanup(ctx, s.keep); err != nil {
			return fmt.Errorf("depurar respaldos: %w", err)
		}
	}
	s.log.Info().Str("name", info.Name).Int("deleted", deleted).Msg("respaldo programado completado")
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		s.log.Error().Err(err).Msg("respaldo programado fallido")
	}
}
