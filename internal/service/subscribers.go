package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/pkg/subscriberclient"
)

const HistoryLimit = 50

// SubscriberService is a read-only view over the billing system's subscriber API.
type SubscriberService struct {
	API subscriberclient.API
}

type SubscriberSummary struct {
	Clave         any    `json:"clave"`
	NombreAbonado string `json:"nombre_abonado"`
	TotalMora     any    `json:"totalMora"`
}

type subscriberRecord struct {
	Clave         any    `json:"clave"`
	NombreAbonado string `json:"nombreabonado"`
	TotalMora     any    `json:"totalMora"`
}

type historyEntry struct {
	FechaPago string `json:"fechaPago"`
	Recibo    any    `json:"recibo"`
}

// Lookup returns the public summary of a subscriber with the name masked.
func (s *SubscriberService) Lookup(ctx context.Context, clave string) (*SubscriberSummary, error) {
	raw, err := s.fetch(ctx, "subscriber", clave, s.API.Subscriber)
	if err != nil {
		return nil, err
	}
	var rec *subscriberRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, internal("decode subscriber", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("subscriber %s: %w", clave, ErrNotFound)
	}
	return &SubscriberSummary{
		Clave:         rec.Clave,
		NombreAbonado: MaskName(rec.NombreAbonado),
		TotalMora:     rec.TotalMora,
	}, nil
}

// LookupFull returns the upstream record unchanged.
func (s *SubscriberService) LookupFull(ctx context.Context, clave string) (json.RawMessage, error) {
	raw, err := s.fetch(ctx, "subscriber", clave, s.API.Subscriber)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "null" {
		return nil, fmt.Errorf("subscriber %s: %w", clave, ErrNotFound)
	}
	return json.RawMessage(raw), nil
}

func (s *SubscriberService) Comments(ctx context.Context, clave string) ([]json.RawMessage, error) {
	raw, err := s.fetch(ctx, "comments", clave, s.API.Comments)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, internal("decode comments", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("comments for %s: %w", clave, ErrNotFound)
	}
	return items, nil
}

// History returns the latest payments: newest first, capped at HistoryLimit,
// then one entry per receipt.
func (s *SubscriberService) History(ctx context.Context, clave string) ([]json.RawMessage, error) {
	raw, err := s.fetch(ctx, "history", clave, s.API.History)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, internal("decode history", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("history for %s: %w", clave, ErrNotFound)
	}
	out, err := ShapeHistory(items)
	if err != nil {
		return nil, internal("decode history", err)
	}
	return out, nil
}

func (s *SubscriberService) fetch(ctx context.Context, kind, clave string, get func(context.Context, string) ([]byte, error)) ([]byte, error) {
	clave = strings.TrimSpace(clave)
	if clave == "" {
		return nil, fmt.Errorf("clave is required: %w", ErrValidation)
	}
	raw, err := get(ctx, clave)
	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, subscriberclient.ErrNotFound):
		return nil, fmt.Errorf("%s %s: %w", kind, clave, ErrNotFound)
	default:
		logging.FromContext(ctx).Error("subscriber api failed", "svc", "subscribers."+kind, "error", err)
		return nil, internal("subscriber api", err)
	}
}

// ShapeHistory orders entries by fechaPago descending, keeps the first
// HistoryLimit and drops later entries that repeat a recibo.
func ShapeHistory(items []json.RawMessage) ([]json.RawMessage, error) {
	type row struct {
		raw    json.RawMessage
		paid   time.Time
		recibo string
	}
	rows := make([]row, len(items))
	for i, it := range items {
		var h historyEntry
		if err := json.Unmarshal(it, &h); err != nil {
			return nil, err
		}
		rows[i] = row{raw: it, paid: parsePaymentDate(h.FechaPago), recibo: fmt.Sprint(h.Recibo)}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].paid.After(rows[j].paid) })
	if len(rows) > HistoryLimit {
		rows = rows[:HistoryLimit]
	}

	seen := make(map[string]bool, len(rows))
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		if seen[r.recibo] {
			continue
		}
		seen[r.recibo] = true
		out = append(out, r.raw)
	}
	return out, nil
}

var paymentDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePaymentDate returns the zero time for unparseable values so they sort last.
func parsePaymentDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range paymentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MaskName keeps the first letter of the first two words, plus the last
// letter of words longer than three. Single-word names are returned as is.
func MaskName(full string) string {
	parts := strings.Fields(norm.NFC.String(full))
	if len(parts) < 2 {
		return full
	}
	return mask(parts[0]) + " " + mask(parts[1])
}

func mask(word string) string {
	r := []rune(word)
	if len(r) <= 3 {
		return string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}
