package plan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("plan not found")
)

// placeholderSchoolID is a known legacy placeholder some clients still send;
// it triggers school recovery from the teacher's own record.
const placeholderSchoolID = "default"

// ConfigurationError reports a publish request whose scope could not be
// established: missing teacher id, or an unresolvable school id.
type ConfigurationError struct {
	Reason string
}

func (err *ConfigurationError) Error() string { return err.Reason }

type (
	Repository interface {
		CreatePlan(ctx context.Context, p Plan, exec ...core.DBExecutor) (Plan, error)
		GetPlanByID(ctx context.Context, id string, exec ...core.DBExecutor) (Plan, error)
		// FilterPlans applies AND operation on available QueryFilter fields;
		// returns the page and the unpaged total.
		FilterPlans(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Plan, int, error)
		UpdatePlan(ctx context.Context, p Plan, exec ...core.DBExecutor) (Plan, error)
	}

	// RosterResolver is satisfied by *student.Service.
	RosterResolver interface {
		ResolveRoster(ctx context.Context, schoolID, teacherID string) (student.Roster, error)
	}

	// TeacherDirectory is satisfied by *user.Service; used only for school
	// recovery.
	TeacherDirectory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		db          core.DB
		repo        Repository
		items       assignment.Repository
		students    RosterResolver
		teachers    TeacherDirectory
		broadcaster core.Broadcaster
		logger      core.Logger
		conf        *core.Config

		now func() time.Time // mockable

		// pubMu serializes concurrent publishes per teacher so late-arriving
		// archives cannot resurrect a newer generation of items.
		mu    sync.Mutex
		pubMu map[string]*sync.Mutex
	}
)

func NewService(
	db core.DB,
	repo Repository,
	items assignment.Repository,
	students RosterResolver,
	teachers TeacherDirectory,
	broadcaster core.Broadcaster,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		db:          db,
		repo:        repo,
		items:       items,
		students:    students,
		teachers:    teachers,
		broadcaster: broadcaster,
		logger:      logger,
		conf:        conf,
		now:         func() time.Time { return time.Now().UTC() },
		pubMu:       make(map[string]*sync.Mutex),
	}
}

func (svc *Service) teacherMutex(teacherID string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	mu, ok := svc.pubMu[teacherID]
	if !ok {
		mu = new(sync.Mutex)
		svc.pubMu[teacherID] = mu
	}
	return mu
}

// Publish runs one publish operation: validate, resolve roster, partition
// tasks by tier, archive-then-insert per tier (each pair in one transaction),
// compute statistics and emit a notification. Publish is not idempotent:
// re-running identical input produces a new generation of items.
func (svc *Service) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if req.TeacherID == "" {
		return nil, &ConfigurationError{Reason: "publisher teacher id is required"}
	}

	schoolID, err := svc.resolveSchoolID(ctx, req)
	if err != nil {
		return nil, err
	}

	mu := svc.teacherMutex(req.TeacherID)
	mu.Lock()
	defer mu.Unlock()

	roster, err := svc.students.ResolveRoster(ctx, schoolID, req.TeacherID)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	targetDate := req.TargetDate
	if targetDate.IsZero() {
		targetDate = now
	}
	taskDate := assignment.DayString(targetDate, svc.conf.Server.Timezone)

	p, err := svc.repo.CreatePlan(ctx, Plan{
		ID:        uuid.New().String(),
		SchoolID:  schoolID,
		TeacherID: req.TeacherID,
		Title:     req.Title,
		Content: PlanContent{
			Progress:    req.Progress,
			Scope:       ScopeTeacherRoster,
			PublisherID: req.TeacherID,
		},
		TargetDate: targetDate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating plan")
	}

	gen := publishGeneration{
		plan:     p,
		roster:   roster,
		taskDate: taskDate,
		now:      now,
	}

	if err = svc.publishProgressTier(ctx, &gen, req.Progress); err != nil {
		return nil, svc.abortPublish(ctx, p, err)
	}
	if err = svc.publishActionTiers(ctx, &gen, req.ClassTasks); err != nil {
		return nil, svc.abortPublish(ctx, p, err)
	}
	if err = svc.publishPersonalizedTier(ctx, &gen, req.Personalized); err != nil {
		return nil, svc.abortPublish(ctx, p, err)
	}

	result := &PublishResult{
		Plan:            p,
		Stats:           gen.stats(),
		AffectedClasses: roster.ClassLabels(),
		Skipped:         gen.skipped,
	}

	svc.broadcastPublished(ctx, result, roster.IDs())
	return result, nil
}

// resolveSchoolID returns the request's school id, recovering it from the
// teacher's own record when missing or a known placeholder.
func (svc *Service) resolveSchoolID(ctx context.Context, req PublishRequest) (string, error) {
	schoolID := core.CleanString(req.SchoolID)
	if schoolID != "" && schoolID != placeholderSchoolID {
		return schoolID, nil
	}

	usr, err := svc.teachers.GetByID(ctx, req.TeacherID)
	if err != nil || usr.SchoolID == "" {
		return "", &ConfigurationError{
			Reason: fmt.Sprintf("school id %q could not be resolved for teacher %s", req.SchoolID, req.TeacherID),
		}
	}
	svc.logger.Info(fmt.Sprintf("recovered school id %s from teacher %s record", usr.SchoolID, req.TeacherID))
	return usr.SchoolID, nil
}

// abortPublish deactivates the plan so a failed publish leaves no partial
// plan active, then wraps the causing error.
func (svc *Service) abortPublish(ctx context.Context, p Plan, cause error) error {
	p.IsActive = false
	p.UpdatedAt = svc.now()
	if _, err := svc.repo.UpdatePlan(ctx, p); err != nil {
		svc.logger.Error(fmt.Sprintf("deactivating plan %s after failed publish: %v", p.ID, err), err)
	}
	return errors.Wrap(cause, "publishing plan")
}

// publishGeneration accumulates the items and stats of one publish call.
type publishGeneration struct {
	plan     Plan
	roster   student.Roster
	taskDate string
	now      time.Time

	created  map[assignment.Tier]int
	archived int
	totalExp int
	skipped  []SkippedStudent
}

func (gen *publishGeneration) track(items []assignment.WorkItem, archived int) {
	if gen.created == nil {
		gen.created = make(map[assignment.Tier]int)
	}
	for _, item := range items {
		gen.created[item.Tier]++
		gen.totalExp += item.ExpAwarded
	}
	gen.archived += archived
}

func (gen *publishGeneration) stats() PublishStats {
	var total int
	for _, n := range gen.created {
		total += n
	}
	return PublishStats{
		TotalStudents:   len(gen.roster.Students),
		TasksCreated:    total,
		CreatedPerTier:  gen.created,
		ArchivedCount:   gen.archived,
		TotalExpAwarded: gen.totalExp,
	}
}

// publishProgressTier archives and re-creates the per-subject progress
// pointers: for each subject with non-empty text, exactly one current item
// per roster student, expAwarded=0 (informational pointer, not a rewarded task).
func (svc *Service) publishProgressTier(ctx context.Context, gen *publishGeneration, progress map[string]string) error {
	subjects := make([]string, 0, len(progress))
	for subject, text := range progress {
		if core.CleanString(text) != "" {
			subjects = append(subjects, subject)
		}
	}
	if len(subjects) == 0 {
		return nil
	}
	sort.Strings(subjects)

	return svc.inTx(ctx, func(tx core.DBTransactor) error {
		var archived int
		items := make([]assignment.WorkItem, 0, len(subjects)*len(gen.roster.Students))

		for _, subject := range subjects {
			n, err := svc.items.ArchiveCurrentItems(ctx, assignment.ArchiveFilter{
				SchoolID:   gen.plan.SchoolID,
				StudentIDs: gen.roster.IDs(),
				Tiers:      []assignment.Tier{assignment.TierProgress},
				Subject:    subject,
			}, tx)
			if err != nil {
				return errors.Wrapf(err, "archiving progress items for subject %s", subject)
			}
			archived += n

			text := progress[subject]
			for _, std := range gen.roster.Students {
				items = append(items, assignment.WorkItem{
					ID:        uuid.New().String(),
					SchoolID:  gen.plan.SchoolID,
					StudentID: std.ID,
					PlanID:    gen.plan.ID,
					Kind:      assignment.KindCheck,
					Tier:      assignment.TierProgress,
					Title:     gen.plan.Title,
					Subject:   subject,
					Content: assignment.Content{
						TaskDate:    gen.taskDate,
						PublisherID: gen.plan.TeacherID,
						Progress:    &assignment.ProgressContent{Subject: subject, Text: text},
					},
					Status:    assignment.StatusPending,
					IsCurrent: true,
					CreatedAt: gen.now,
					UpdatedAt: gen.now,
				})
			}
		}

		created, err := svc.items.CreateItems(ctx, items, tx)
		if err != nil {
			return errors.Wrap(err, "creating progress items")
		}
		gen.track(created, archived)
		return nil
	})
}

// publishActionTiers sweeps the whole roster's current Methodology and Growth
// items (an empty class-wide task list still clears yesterday's board), then
// inserts one item per (roster student x task definition).
func (svc *Service) publishActionTiers(ctx context.Context, gen *publishGeneration, tasks []assignment.TaskDef) error {
	return svc.inTx(ctx, func(tx core.DBTransactor) error {
		archived, err := svc.items.ArchiveCurrentItems(ctx, assignment.ArchiveFilter{
			SchoolID:   gen.plan.SchoolID,
			StudentIDs: gen.roster.IDs(),
			Tiers:      assignment.ActionTiers,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "archiving class-wide items")
		}

		items := make([]assignment.WorkItem, 0, len(tasks)*len(gen.roster.Students))
		for _, def := range tasks {
			tier, fellBack := assignment.ClassifyTask(def)
			if fellBack {
				svc.logger.Warn(fmt.Sprintf("tier classifier fallback used for class task %q (category %q)", def.Title, def.Category))
			}
			if tier != assignment.TierMethodology && tier != assignment.TierGrowth {
				// class-wide definitions may only land on the action tiers;
				// anything else would corrupt the narrower sweeps
				svc.logger.Warn(fmt.Sprintf("class task %q classified as %s; demoting to %s", def.Title, tier, assignment.TierGrowth))
				tier = assignment.TierGrowth
			}

			kind := def.Kind
			if kind == "" {
				kind = assignment.KindTask
			}
			for _, std := range gen.roster.Students {
				items = append(items, assignment.WorkItem{
					ID:        uuid.New().String(),
					SchoolID:  gen.plan.SchoolID,
					StudentID: std.ID,
					PlanID:    gen.plan.ID,
					Kind:      kind,
					Tier:      tier,
					Title:     def.Title,
					Content: assignment.Content{
						TaskDate:    gen.taskDate,
						PublisherID: gen.plan.TeacherID,
						Task:        &assignment.TaskContent{Category: def.Category, Subcategory: def.Subcategory, Note: def.Note},
					},
					Status:     assignment.StatusPending,
					IsCurrent:  true,
					ExpAwarded: def.Exp,
					CreatedAt:  gen.now,
					UpdatedAt:  gen.now,
				})
			}
		}

		created, err := svc.items.CreateItems(ctx, items, tx)
		if err != nil {
			return errors.Wrap(err, "creating class-wide items")
		}
		gen.track(created, archived)
		return nil
	})
}

// publishPersonalizedTier archives and re-creates Personalized items only for
// the students explicitly named; everyone else keeps theirs. Named students
// not in the roster are skipped with a warning, never a hard failure.
func (svc *Service) publishPersonalizedTier(ctx context.Context, gen *publishGeneration, personalized []PersonalizedAssignment) error {
	matched := make([]PersonalizedAssignment, 0, len(personalized))
	for _, pa := range personalized {
		if !gen.roster.Contains(pa.StudentID) {
			svc.logger.Warn(fmt.Sprintf(
				"skipping personalized assignment: student %s is not in teacher %s roster",
				pa.StudentID, gen.plan.TeacherID,
			))
			gen.skipped = append(gen.skipped, SkippedStudent{
				StudentID: pa.StudentID,
				Reason:    "student not in publisher's roster",
			})
			continue
		}
		matched = append(matched, pa)
	}
	if len(matched) == 0 {
		return nil
	}

	return svc.inTx(ctx, func(tx core.DBTransactor) error {
		ids := make([]string, 0, len(matched))
		for _, pa := range matched {
			ids = append(ids, pa.StudentID)
		}

		archived, err := svc.items.ArchiveCurrentItems(ctx, assignment.ArchiveFilter{
			SchoolID:   gen.plan.SchoolID,
			StudentIDs: ids,
			Tiers:      []assignment.Tier{assignment.TierPersonalized},
		}, tx)
		if err != nil {
			return errors.Wrap(err, "archiving personalized items")
		}

		var items []assignment.WorkItem
		for _, pa := range matched {
			for _, def := range pa.Tasks {
				kind := def.Kind
				if kind == "" {
					kind = assignment.KindSpecial
				}
				items = append(items, assignment.WorkItem{
					ID:        uuid.New().String(),
					SchoolID:  gen.plan.SchoolID,
					StudentID: pa.StudentID,
					PlanID:    gen.plan.ID,
					Kind:      kind,
					Tier:      assignment.TierPersonalized,
					Title:     def.Title,
					Content: assignment.Content{
						TaskDate:    gen.taskDate,
						PublisherID: gen.plan.TeacherID,
						Personalized: &assignment.PersonalizedContent{
							TaskContent:     assignment.TaskContent{Category: def.Category, Subcategory: def.Subcategory, Note: def.Note},
							TargetStudentID: pa.StudentID,
						},
					},
					Status:     assignment.StatusPending,
					IsCurrent:  true,
					ExpAwarded: def.Exp,
					CreatedAt:  gen.now,
					UpdatedAt:  gen.now,
				})
			}
		}

		created, err := svc.items.CreateItems(ctx, items, tx)
		if err != nil {
			return errors.Wrap(err, "creating personalized items")
		}
		gen.track(created, archived)
		return nil
	})
}

func (svc *Service) inTx(ctx context.Context, fn func(tx core.DBTransactor) error) error {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			svc.logger.Error(fmt.Sprintf("rolling back: %v", rbErr), rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// broadcastPublished pushes the publish notification to the teacher-scoped
// channel and a data-update hint to each student; failures are logged only.
func (svc *Service) broadcastPublished(ctx context.Context, res *PublishResult, studentIDs []string) {
	if svc.broadcaster == nil {
		return
	}

	payload := map[string]interface{}{
		"plan_id":          res.Plan.ID,
		"title":            res.Plan.Title,
		"stats":            res.Stats,
		"affected_classes": res.AffectedClasses,
	}
	if err := svc.broadcaster.Publish(ctx, core.TeacherChannel(res.Plan.TeacherID), core.EventPlanPublished, payload); err != nil {
		svc.logger.Warn(fmt.Sprintf("broadcasting plan published: %v", err))
	}

	for _, std := range studentIDs {
		hint := map[string]interface{}{
			"type":       core.EventPlanPublished,
			"student_id": std,
			"plan_id":    res.Plan.ID,
		}
		if err := svc.broadcaster.Publish(ctx, core.StudentChannel(std), core.EventDataUpdate, hint); err != nil {
			svc.logger.Warn(fmt.Sprintf("broadcasting student update: %v", err))
		}
	}
}

// Query returns the school's plans, newest target date first.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Plan, int, error) {
	filter.Clean()
	return svc.repo.FilterPlans(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id, scopeSchoolID string) (Plan, error) {
	p, err := svc.repo.GetPlanByID(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if p.SchoolID != scopeSchoolID {
		return Plan{}, ErrNotFound
	}
	return p, nil
}

// Deactivate soft-deletes a plan; its work items keep their own lifecycle.
func (svc *Service) Deactivate(ctx context.Context, id, scopeSchoolID string) (Plan, error) {
	p, err := svc.GetByID(ctx, id, scopeSchoolID)
	if err != nil {
		return Plan{}, err
	}
	p.IsActive = false
	p.UpdatedAt = svc.now()
	return svc.repo.UpdatePlan(ctx, p)
}

// PatchProgress is the narrow post-creation update: it merges new per-subject
// progress text into the plan content without touching anything else.
func (svc *Service) PatchProgress(ctx context.Context, id, scopeSchoolID string, progress map[string]string) (Plan, error) {
	p, err := svc.GetByID(ctx, id, scopeSchoolID)
	if err != nil {
		return Plan{}, err
	}
	if p.Content.Progress == nil {
		p.Content.Progress = make(map[string]string, len(progress))
	}
	for subject, text := range progress {
		p.Content.Progress[subject] = text
	}
	p.UpdatedAt = svc.now()
	return svc.repo.UpdatePlan(ctx, p)
}
