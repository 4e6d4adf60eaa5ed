package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/scheduling"
)

// UpcomingSource provides the appointments the poller reminds patients
// about. *scheduling.Service satisfies it.
type UpcomingSource interface {
	UpcomingOnDate(ctx context.Context, date scheduling.Date) ([]scheduling.UpcomingAppointment, error)
	UpcomingWithin(ctx context.Context, d time.Duration) ([]scheduling.UpcomingAppointment, error)
}

// Poller periodically checks for upcoming appointments and sends reminder
// emails: a day-before notice for tomorrow's appointments and a same-day
// notice for appointments starting within the lead window.
type Poller struct {
	source   UpcomingSource
	manager  *Manager
	interval time.Duration
	lead     time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]struct{}
}

// NewPoller creates a Poller. interval controls how often the check runs,
// lead how far ahead the same-day notice looks.
func NewPoller(source UpcomingSource, manager *Manager, interval, lead time.Duration, log zerolog.Logger) *Poller {
	return &Poller{
		source:   source,
		manager:  manager,
		interval: interval,
		lead:     lead,
		log:      log,
		now:      time.Now,
		sent:     make(map[string]struct{}),
	}
}

// Run loops until ctx is cancelled, invoking CheckAndNotify once per
// interval. An immediate check runs at startup.
func (p *Poller) Run(ctx context.Context) {
	p.CheckAndNotify(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("reminder poller stopped")
			return
		case <-ticker.C:
			p.CheckAndNotify(ctx)
		}
	}
}

// CheckAndNotify runs one reminder pass. Each appointment is notified at
// most once per template for the lifetime of the poller.
func (p *Poller) CheckAndNotify(ctx context.Context) {
	tomorrow := scheduling.DateOf(p.now()).AddDays(1)

	nextDay, err := p.source.UpcomingOnDate(ctx, tomorrow)
	if err != nil {
		p.log.Error().Err(err).Msg("reminder poller: list tomorrow's appointments")
	} else {
		p.notify(ctx, nextDay, TemplateAppointmentReminder)
	}

	soon, err := p.source.UpcomingWithin(ctx, p.lead)
	if err != nil {
		p.log.Error().Err(err).Msg("reminder poller: list imminent appointments")
	} else {
		p.notify(ctx, soon, TemplateAppointmentToday)
	}
}

func (p *Poller) notify(ctx context.Context, appts []scheduling.UpcomingAppointment, templateID string) {
	for i := range appts {
		a := &appts[i]
		key := templateID + "|" + a.Key().String()
		if p.alreadySent(key) {
			continue
		}
		if a.PatientEmail == "" {
			p.log.Warn().
				Int("patient_id", a.PatientID).
				Str("appointment", a.Key().String()).
				Msg("reminder skipped: patient has no email")
			p.markSent(key)
			continue
		}

		data := map[string]string{
			"patient_name": a.PatientName,
			"doctor_name":  a.DoctorName,
			"date":         a.Date.String(),
			"time":         a.Time.String(),
		}
		if _, err := p.manager.SendFromTemplate(ctx, templateID, data, a.PatientEmail); err != nil {
			p.log.Error().Err(err).
				Str("recipient", a.PatientEmail).
				Str("template", templateID).
				Msg("reminder send failed")
			continue
		}

		p.markSent(key)
		p.log.Info().
			Str("recipient", a.PatientEmail).
			Str("template", templateID).
			Str("appointment", a.Key().String()).
			Msg("reminder sent")
	}
}

func (p *Poller) alreadySent(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sent[key]
	return ok
}

func (p *Poller) markSent(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent[key] = struct{}{}
}
