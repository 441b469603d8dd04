package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
	"github.com/Skotchmaster/water_backoffice/internal/storage"
	"github.com/Skotchmaster/water_backoffice/internal/util"
)

// ReportSearcher is the full-text index kept next to the reports table.
type ReportSearcher interface {
	Index(ctx context.Context, r *models.Report) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []string, error)
}

type ReportService struct {
	Repo        *repo.GormRepo
	Files       storage.Uploader
	Validator   *storage.FileValidator
	Index       ReportSearcher
	Events      EventPublisher
	Bg          *notify.Dispatcher
	EventsTopic string
	Now         func() time.Time
}

type ReportInput struct {
	Key         string
	Name        string
	DNI         string
	Cellphone   string
	Date        time.Time
	Report      string
	Direction   string
	Observation string
}

type ReportPage struct {
	Items []models.Report `json:"items"`
	Meta  util.Meta       `json:"meta"`
}

type ReportEvent struct {
	Type     string    `json:"type"`
	ReportID string    `json:"report_id"`
	Key      string    `json:"key,omitempty"`
	StateID  string    `json:"state_id,omitempty"`
	At       time.Time `json:"at"`
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ReportService) Create(ctx context.Context, in ReportInput, files []storage.File) (*models.Report, error) {
	l := logging.FromContext(ctx).With("svc", "reports.create")

	if err := validateReport(&in); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one image is required: %w", ErrValidation)
	}

	state, err := s.Repo.FindStateByName(ctx, models.DefaultReportState)
	if err != nil {
		l.Error("default state missing", "error", err)
		return nil, internal("find default state", err)
	}

	objects, err := s.upload(ctx, files)
	if err != nil {
		return nil, err
	}

	rep := &models.Report{
		Key:         in.Key,
		Name:        in.Name,
		DNI:         in.DNI,
		Cellphone:   in.Cellphone,
		Date:        in.Date,
		Report:      in.Report,
		Direction:   in.Direction,
		Observation: in.Observation,
		StateID:     state.ID,
	}
	if rep.Date.IsZero() {
		rep.Date = s.now()
	}
	rep.PublicIDs, rep.URLs = split(objects)

	if err := s.Repo.CreateReport(ctx, rep); err != nil {
		l.Error("create report failed", "error", err)
		s.discard(ctx, rep.PublicIDs)
		return nil, storeErr("create report", err, ErrNotFound)
	}
	rep.State = state

	s.reindex(ctx, rep)
	publishAsync(ctx, s.Bg, s.Events, s.EventsTopic, rep.ID, ReportEvent{
		Type: "report_created", ReportID: rep.ID, Key: rep.Key, StateID: rep.StateID, At: rep.CreatedAt,
	})
	l.Info("report created", "report_id", rep.ID, "images", len(rep.PublicIDs))
	return rep, nil
}

func (s *ReportService) List(ctx context.Context, page, size int) (*ReportPage, error) {
	from, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListReports(ctx, from, limit)
	if err != nil {
		return nil, internal("list reports", err)
	}
	return &ReportPage{Items: items, Meta: util.NewMeta(page, size, total)}, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	rep, err := s.Repo.GetReport(ctx, id)
	if err != nil {
		return nil, storeErr("get report", err, fmt.Errorf("report %s: %w", id, ErrNotFound))
	}
	return rep, nil
}

// Update rewrites the report fields. New files replace the stored ones.
func (s *ReportService) Update(ctx context.Context, id string, in ReportInput, files []storage.File) (*models.Report, error) {
	l := logging.FromContext(ctx).With("svc", "reports.update", "report_id", id)

	if err := validateReport(&in); err != nil {
		return nil, err
	}
	rep, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rep.Key = in.Key
	rep.Name = in.Name
	rep.DNI = in.DNI
	rep.Cellphone = in.Cellphone
	rep.Report = in.Report
	rep.Direction = in.Direction
	rep.Observation = in.Observation
	if !in.Date.IsZero() {
		rep.Date = in.Date
	}

	var stale []string
	if len(files) > 0 {
		objects, err := s.upload(ctx, files)
		if err != nil {
			return nil, err
		}
		stale = rep.PublicIDs
		rep.PublicIDs, rep.URLs = split(objects)
	}

	if err := s.Repo.SaveReport(ctx, rep); err != nil {
		l.Error("update report failed", "error", err)
		if len(files) > 0 {
			s.discard(ctx, rep.PublicIDs)
		}
		return nil, storeErr("update report", err, ErrNotFound)
	}
	s.discard(ctx, stale)
	s.reindex(ctx, rep)
	l.Info("report updated", "replaced_images", len(stale))
	return rep, nil
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	rep, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteReport(ctx, id); err != nil {
		return storeErr("delete report", err, fmt.Errorf("report %s: %w", id, ErrNotFound))
	}

	s.discard(ctx, rep.PublicIDs)
	if s.Index != nil && s.Bg != nil {
		s.Bg.Go(ctx, "unindex.report", func(ctx context.Context) error {
			return s.Index.Delete(ctx, id)
		})
	}
	publishAsync(ctx, s.Bg, s.Events, s.EventsTopic, id, ReportEvent{Type: "report_deleted", ReportID: id, At: s.now()})
	logging.FromContext(ctx).Info("report deleted", "svc", "reports.delete", "report_id", id)
	return nil
}

func (s *ReportService) ImageURL(publicID string) (string, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" || s.Files == nil {
		return "", fmt.Errorf("image: %w", ErrNotFound)
	}
	u := s.Files.URL(publicID)
	if u == "" {
		return "", fmt.Errorf("image %s: %w", publicID, ErrNotFound)
	}
	return u, nil
}

func (s *ReportService) ChangeState(ctx context.Context, id, stateID string) (*models.Report, error) {
	l := logging.FromContext(ctx).With("svc", "reports.change_state", "report_id", id)

	if _, err := s.Repo.GetState(ctx, stateID); err != nil {
		return nil, storeErr("get state", err, fmt.Errorf("state %s: %w", stateID, ErrNotFound))
	}
	if err := s.Repo.SetReportState(ctx, id, stateID); err != nil {
		return nil, storeErr("set report state", err, fmt.Errorf("report %s: %w", id, ErrNotFound))
	}
	rep, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, rep)
	publishAsync(ctx, s.Bg, s.Events, s.EventsTopic, rep.ID, ReportEvent{
		Type: "report_state_changed", ReportID: rep.ID, Key: rep.Key, StateID: stateID, At: s.now(),
	})
	l.Info("report state changed", "state_id", stateID)
	return rep, nil
}

// Search asks the index for matching ids and loads the rows in index order.
// Without an index, or when the index fails, it falls back to the database.
func (s *ReportService) Search(ctx context.Context, q string, page, size int) (*ReportPage, error) {
	l := logging.FromContext(ctx).With("svc", "reports.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(ctx, page, size)
	}
	from, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, from, limit)
		if err == nil {
			rows, err := s.Repo.ReportsByIDs(ctx, ids)
			if err != nil {
				return nil, internal("load reports", err)
			}
			return &ReportPage{Items: orderByIDs(rows, ids), Meta: util.NewMeta(page, size, total)}, nil
		}
		l.Warn("index search failed, using database", "error", err)
	}

	total, items, err := s.Repo.SearchReports(ctx, q, from, limit)
	if err != nil {
		return nil, internal("search reports", err)
	}
	return &ReportPage{Items: items, Meta: util.NewMeta(page, size, total)}, nil
}

func (s *ReportService) ListStates(ctx context.Context) ([]models.State, error) {
	states, err := s.Repo.ListStates(ctx)
	if err != nil {
		return nil, internal("list states", err)
	}
	return states, nil
}

func (s *ReportService) GetState(ctx context.Context, id string) (*models.State, error) {
	st, err := s.Repo.GetState(ctx, id)
	if err != nil {
		return nil, storeErr("get state", err, fmt.Errorf("state %s: %w", id, ErrNotFound))
	}
	return st, nil
}

// upload validates every file before sending any of them. A failed upload
// removes the ones already stored.
func (s *ReportService) upload(ctx context.Context, files []storage.File) ([]storage.Object, error) {
	if s.Files == nil {
		return nil, internal("upload", storage.ErrNotConfigured)
	}

	types := make([]string, len(files))
	for i, f := range files {
		ct, err := s.Validator.Validate(f)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrValidation)
		}
		types[i] = ct
	}

	objects := make([]storage.Object, 0, len(files))
	for i, f := range files {
		obj, err := s.Files.Upload(ctx, f, types[i])
		if err != nil {
			ids, _ := split(objects)
			s.discard(ctx, ids)
			logging.FromContext(ctx).Error("upload failed", "svc", "reports.upload", "file", f.Name, "error", err)
			return nil, internal("upload "+f.Name, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func (s *ReportService) discard(ctx context.Context, ids []string) {
	if len(ids) == 0 || s.Files == nil || s.Bg == nil {
		return
	}
	ids = append([]string(nil), ids...)
	s.Bg.Go(ctx, "storage.delete", func(ctx context.Context) error {
		var errs []error
		for _, id := range ids {
			if err := s.Files.Delete(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
			}
		}
		return errors.Join(errs...)
	})
}

func (s *ReportService) reindex(ctx context.Context, rep *models.Report) {
	if s.Index == nil || s.Bg == nil {
		return
	}
	doc := *rep
	s.Bg.Go(ctx, "index.report", func(ctx context.Context) error {
		return s.Index.Index(ctx, &doc)
	})
}

func split(objects []storage.Object) (ids, urls []string) {
	ids = make([]string, len(objects))
	urls = make([]string, len(objects))
	for i, o := range objects {
		ids[i] = o.ID
		urls[i] = o.URL
	}
	return ids, urls
}

func orderByIDs(rows []models.Report, ids []string) []models.Report {
	byID := make(map[string]models.Report, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]models.Report, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func validateReport(in *ReportInput) error {
	in.Key = strings.TrimSpace(in.Key)
	in.Name = strings.TrimSpace(in.Name)
	in.DNI = strings.TrimSpace(in.DNI)
	in.Cellphone = strings.TrimSpace(in.Cellphone)
	in.Report = strings.TrimSpace(in.Report)
	in.Direction = strings.TrimSpace(in.Direction)
	in.Observation = strings.TrimSpace(in.Observation)

	switch {
	case in.Name == "" || runeLen(in.Name) > 150:
		return fmt.Errorf("name must be 1 to 150 characters: %w", ErrValidation)
	case len(in.DNI) != 13 || !digits(in.DNI):
		return fmt.Errorf("dni must be 13 digits: %w", ErrValidation)
	case in.Cellphone != "" && (len(in.Cellphone) > 15 || !digits(in.Cellphone)):
		return fmt.Errorf("cellphone must be up to 15 digits: %w", ErrValidation)
	case in.Report == "":
		return fmt.Errorf("report text is required: %w", ErrValidation)
	case runeLen(in.Key) > 20:
		return fmt.Errorf("key must be at most 20 characters: %w", ErrValidation)
	case runeLen(in.Direction) > 200:
		return fmt.Errorf("direction must be at most 200 characters: %w", ErrValidation)
	case runeLen(in.Observation) > 500:
		return fmt.Errorf("observation must be at most 500 characters: %w", ErrValidation)
	}
	return nil
}

func runeLen(s string) int { return len([]rune(s)) }

func digits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
