package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homeserve/models"
)

// Config tunes the scheduling engine.
type Config struct {
	DefaultTimezone     string           // used when neither the request nor the contractor names a zone
	SlotMinutes         int              // default slot length for generation
	BufferMinutes       int              // turnover buffer when the manager has no policy
	TravelMinutes       int              // minimum gap between jobs at different addresses
	AlternativeLimit    int              // max alternatives offered on rejection
	AlternativeDays     int              // forward search window for alternatives
	PreferredWindow     time.Duration    // match radius around a member's preferred time
	TurnoverProximity   time.Duration    // how far from the request soft buffer checks look
	Now                 func() time.Time // clock, overridable in tests
	DetectionMethodName string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimezone:     "UTC",
		SlotMinutes:         120,
		BufferMinutes:       20,
		TravelMinutes:       20,
		AlternativeLimit:    5,
		AlternativeDays:     14,
		PreferredWindow:     2 * time.Hour,
		TurnoverProximity:   time.Hour,
		Now:                 time.Now,
		DetectionMethodName: "booking_validation",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = d.DefaultTimezone
	}
	if c.SlotMinutes <= 0 {
		c.SlotMinutes = d.SlotMinutes
	}
	if c.BufferMinutes < 0 {
		c.BufferMinutes = 0
	}
	if c.TravelMinutes <= 0 {
		c.TravelMinutes = d.TravelMinutes
	}
	if c.AlternativeLimit <= 0 {
		c.AlternativeLimit = d.AlternativeLimit
	}
	if c.AlternativeDays <= 0 {
		c.AlternativeDays = d.AlternativeDays
	}
	if c.PreferredWindow <= 0 {
		c.PreferredWindow = d.PreferredWindow
	}
	if c.TurnoverProximity <= 0 {
		c.TurnoverProximity = d.TurnoverProximity
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	if c.DetectionMethodName == "" {
		c.DetectionMethodName = d.DetectionMethodName
	}
	return c
}

// Service is the contractor scheduling and conflict-detection engine.
type Service struct {
	repo   Repository
	locker Locker
	logger *zap.Logger
	cfg    Config
}

// NewService wires the engine to its storage. A nil locker falls back to an
// in-process per-contractor mutex; a nil logger discards output.
func NewService(repo Repository, locker Locker, logger *zap.Logger, cfg Config) *Service {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, locker: locker, logger: logger, cfg: cfg.withDefaults()}
}

// contractorContext is the policy snapshot every operation works against.
type contractorContext struct {
	profile  *models.ContractorProfile
	loc      *time.Location
	settings *models.ManagerSettings
	blocks   []models.ManagerTimeBlock
	buffer   time.Duration
}

func (s *Service) loadContractor(ctx context.Context, contractorID, timezone string) (*contractorContext, error) {
	if contractorID == "" {
		return nil, invalid("contractorId is required")
	}
	profile, err := s.repo.GetContractorProfile(ctx, contractorID)
	if err != nil {
		return nil, lookup("contractor", contractorID, err)
	}

	zone := timezone
	if zone == "" {
		zone = profile.Timezone
	}
	if zone == "" {
		zone = s.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, newError(CodeInvalidRequest, err, "unknown timezone %q", zone)
	}

	cc := &contractorContext{
		profile: profile,
		loc:     loc,
		buffer:  time.Duration(s.cfg.BufferMinutes) * time.Minute,
	}
	if profile.ManagerID == "" {
		return cc, nil
	}

	settings, err := s.repo.GetManagerSettings(ctx, profile.ManagerID)
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
	case err != nil:
		return nil, lookup("manager settings", profile.ManagerID, err)
	default:
		cc.settings = settings
		if settings.TurnoverBufferMinutes > 0 {
			cc.buffer = time.Duration(settings.TurnoverBufferMinutes) * time.Minute
		}
	}

	blocks, err := s.repo.GetManagerTimeBlocks(ctx, profile.ManagerID)
	if err != nil && !errors.Is(err, models.ErrRecordNotFound) {
		return nil, lookup("manager time blocks", profile.ManagerID, err)
	}
	for _, b := range blocks {
		if b.AppliesTo(contractorID) {
			cc.blocks = append(cc.blocks, b)
		}
	}
	return cc, nil
}

// serviceWindow returns the manager's service window on day, if configured.
func (cc *contractorContext) serviceWindow(day time.Time) (time.Time, time.Time, bool, error) {
	if !cc.settings.HasServiceWindow() {
		return time.Time{}, time.Time{}, false, nil
	}
	start, err := AtClock(day, cc.settings.ServiceWindowStart, cc.loc)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	end, err := AtClock(day, cc.settings.ServiceWindowEnd, cc.loc)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start, end, true, nil
}

// dailyJobCounts counts the manager's scheduled jobs per local calendar day,
// ignoring the work order identified by exclude.
func (s *Service) dailyJobCounts(ctx context.Context, cc *contractorContext, exclude string) (map[string]int, error) {
	counts := map[string]int{}
	if cc.settings == nil || cc.settings.MaxDailyJobs <= 0 {
		return counts, nil
	}
	orders, err := s.repo.GetWorkOrdersByManager(ctx, cc.profile.ManagerID)
	if err != nil {
		return nil, lookup("manager work orders", cc.profile.ManagerID, err)
	}
	for _, wo := range orders {
		if wo.ID == exclude || !wo.IsScheduled() {
			continue
		}
		start, _ := wo.Window()
		counts[DateKey(start, cc.loc)]++
	}
	return counts, nil
}

// audit appends an audit entry. The action it records has already happened, so
// a failed write is logged rather than returned.
func (s *Service) audit(ctx context.Context, entry models.ScheduleAuditLog) {
	entry.ID = uuid.New().String()
	entry.CreatedAt = s.cfg.Now()
	if _, err := s.repo.CreateScheduleAuditLog(ctx, entry); err != nil {
		s.logger.Warn("scheduling: audit write failed",
			zap.String("action", string(entry.Action)),
			zap.String("entityID", entry.EntityID),
			zap.Error(err))
	}
}

// AuditTrail returns the audit entries recorded against a work order, slot or
// contractor, oldest first.
func (s *Service) AuditTrail(ctx context.Context, entityID string) ([]models.ScheduleAuditLog, error) {
	if entityID == "" {
		return nil, invalid("entity id is required")
	}
	entries, err := s.repo.GetAuditLogsByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load audit trail %s: %w", entityID, err)
	}
	if entries == nil {
		entries = []models.ScheduleAuditLog{}
	}
	return entries, nil
}
