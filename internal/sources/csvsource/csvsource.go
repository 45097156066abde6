// Package csvsource reads extract feeds from CSV files or HTTP URLs.
//
// Headers are matched by alias, so exports that label the same column
// "利用者ID", "client_id" or "ID" all load. Files may be UTF-8 (with or
// without a byte-order mark), UTF-16 with a byte-order mark, or Shift_JIS.
package csvsource

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/agentstation/careroster/internal/transport"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/logging"
	"github.com/agentstation/careroster/pkg/sources"
)

var _ sources.Source = (*Source)(nil)

// Source is one CSV extract feed.
type Source struct {
	feed        sources.ID
	location    string
	client      *transport.Client
	eventSystem string
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for http(s) locations.
func WithClient(c *transport.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithEventSystem names the source system for event and equipment rows
// that carry no source column.
func WithEventSystem(name string) Option {
	return func(s *Source) { s.eventSystem = name }
}

// New returns a CSV source for feed read from location.
func New(feed sources.ID, location string, opts ...Option) (*Source, error) {
	if !feed.IsValid() {
		return nil, errors.NewValidationError("feed", feed, "unknown source feed")
	}
	if location == "" {
		return nil, errors.NewConfigError(feed.String(), "source location is required", nil)
	}
	s := &Source{feed: feed, location: location, eventSystem: "occupancy"}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = transport.New(&transport.NoAuth{})
	}
	return s, nil
}

// ID returns the feed this source supplies.
func (s *Source) ID() sources.ID { return s.feed }

// Location returns the file path or URL.
func (s *Source) Location() string { return s.location }

// Fetch reads and parses the whole extract.
func (s *Source) Fetch(ctx context.Context) (*sources.Extract, error) {
	raw, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	data, enc, err := Decode(raw)
	if err != nil {
		return nil, sources.Permanent(errors.WrapParse("csv", s.location, err))
	}
	logging.FromContext(ctx).Debug().
		Str("location", s.location).
		Str("encoding", enc).
		Int("bytes", len(raw)).
		Msg("extract read")

	return s.parse(data)
}

func (s *Source) read(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(s.location, "http://") || strings.HasPrefix(s.location, "https://") {
		body, err := s.client.Get(ctx, s.location)
		var se *transport.StatusError
		if stderrors.As(err, &se) && !se.Temporary() {
			return nil, sources.Permanent(err)
		}
		return body, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(strings.TrimPrefix(s.location, "file://"))
	if os.IsNotExist(err) {
		return nil, sources.Permanent(errors.WrapIO("read", s.location, err))
	}
	if err != nil {
		return nil, errors.WrapIO("read", s.location, err)
	}
	return data, nil
}

func (s *Source) parse(data []byte) (*sources.Extract, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	cols, err := r.Read()
	if stderrors.Is(err, io.EOF) {
		return &sources.Extract{}, nil
	}
	if err != nil {
		return nil, sources.Permanent(errors.WrapParse("csv", s.location, err))
	}
	h := parseHeader(cols)
	if missing := h.missing(s.feed); len(missing) > 0 {
		return nil, sources.Permanent(errors.NewParseError("csv", s.location,
			"missing required columns: "+strings.Join(missing, ", "), nil))
	}

	out := &sources.Extract{}
	row := 0
	for {
		record, err := r.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, sources.Permanent(errors.WrapParse("csv", s.location, err))
		}
		row++
		if blank(record) {
			continue
		}
		switch s.feed {
		case sources.BaselineID:
			out.Baseline = append(out.Baseline, baselineRow(h, record, row))
		case sources.EventsID:
			out.Events = append(out.Events, s.eventRow(h, record, row))
		case sources.EquipmentID:
			out.Equipment = append(out.Equipment, s.equipmentRow(h, record, row))
		}
	}
	return out, nil
}

func baselineRow(h header, rec []string, row int) sources.BaselineRow {
	return sources.BaselineRow{
		Row:               row,
		ID:                h.get(rec, colID),
		Name:              h.name(rec),
		NameKana:          h.kana(rec),
		BirthDate:         h.get(rec, colBirthDate),
		Gender:            h.get(rec, colGender),
		CareLevel:         h.get(rec, colCareLevel),
		CopayCode:         h.get(rec, colCopay),
		WelfareFlag:       h.get(rec, colWelfare),
		CareManager:       h.get(rec, colCareManager),
		CareSupportOffice: h.get(rec, colCareSupportOffice),
		FacilityName:      h.get(rec, colFacility),
		RoomNumber:        h.get(rec, colRoom),
		Address:           h.get(rec, colAddress),
		StartDate:         h.get(rec, colStartDate),
	}
}

func (s *Source) eventRow(h header, rec []string, row int) sources.EventRow {
	return sources.EventRow{
		Row:           row,
		Source:        s.system(h, rec),
		SourceEventID: h.get(rec, colEventID),
		ClientID:      h.get(rec, colID),
		Name:          h.name(rec),
		NameKana:      h.kana(rec),
		Kind:          h.get(rec, colKind),
		EffectiveDate: h.get(rec, colDate),
		Note:          h.get(rec, colNote),
		Office:        h.get(rec, colOffice),
		Recorder:      h.get(rec, colRecorder),
		UsageCategory: h.get(rec, colUsageCategory),
	}
}

func (s *Source) equipmentRow(h header, rec []string, row int) sources.EquipmentRow {
	return sources.EquipmentRow{
		Row:         row,
		Source:      s.system(h, rec),
		RowID:       h.get(rec, colRowID),
		ClientID:    h.get(rec, colID),
		Name:        h.name(rec),
		NameKana:    h.kana(rec),
		ProductName: h.get(rec, colProduct),
		Category:    h.get(rec, colCategory),
		Status:      h.get(rec, colStatus),
		UnitPrice:   h.get(rec, colUnitPrice),
		Quantity:    h.get(rec, colQuantity),
		TaxType:     h.get(rec, colTaxType),
		TaxIncluded: h.get(rec, colTaxIncluded),
		Date:        h.get(rec, colDate),
	}
}

func (s *Source) system(h header, rec []string) string {
	if v := h.get(rec, colSource); v != "" {
		return v
	}
	return s.eventSystem
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
