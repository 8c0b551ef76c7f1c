// Package report assembles the dashboard pages. Every page is a fixed list of sections;
// each section declares the fields it needs and is built in isolation, so a missing
// column or a failed join costs that section only.
package report

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/internal/pipeline"
)

// Section kinds.
const (
	KindChart = "chart"
	KindTable = "table"
	KindNote  = "note"
	KindMap   = "map"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Options tunes section output.
type Options struct {
	TopN     int
	JoinMode model.JoinMode
}

// Section is one block of a page.
type Section struct {
	ID       string
	Title    string
	Kind     string
	Requires []model.Field
	build    func(in *input) (SectionResult, error)
}

// Page is an enumerated report page.
type Page struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Sections []Section `json:"-"`
}

// SectionInfo describes a section in the page catalogue.
type SectionInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Kind     string        `json:"kind"`
	Requires []model.Field `json:"requires"`
}

// PageInfo describes a page in the page catalogue.
type PageInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Sections []SectionInfo `json:"sections"`
}

// Info returns the catalogue entry of p.
func (p Page) Info() PageInfo {
	info := PageInfo{ID: p.ID, Title: p.Title, Sections: make([]SectionInfo, 0, len(p.Sections))}
	for _, s := range p.Sections {
		info.Sections = append(info.Sections, SectionInfo{ID: s.ID, Title: s.Title, Kind: s.Kind, Requires: s.Requires})
	}
	return info
}

// SectionResult is the output of one section. Chart holds SVG bytes when the section draws one.
type SectionResult struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Kind     string                `json:"kind"`
	Notes    []string              `json:"notes,omitempty"`
	Table    *model.Table          `json:"table,omitempty"`
	Data     any                   `json:"data,omitempty"`
	Chart    []byte                `json:"-"`
	HasChart bool                  `json:"has_chart"`
	Warnings []*domainerrors.Error `json:"warnings,omitempty"`
	Error    *domainerrors.Error   `json:"error,omitempty"`
}

// PageResult is a built page.
type PageResult struct {
	Page     string          `json:"page"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Failed   int             `json:"failed"`
	Sections []SectionResult `json:"sections"`
	BuiltAt  time.Time       `json:"built_at"`
}

// Errors returns the failed sections' errors keyed by section id.
func (r PageResult) Errors() map[string]*domainerrors.Error {
	out := make(map[string]*domainerrors.Error)
	for _, s := range r.Sections {
		if s.Error != nil {
			out[s.ID] = s.Error
		}
	}
	return out
}

type input struct {
	ds      *pipeline.Dataset
	records []model.Record
	opts    Options
}

// Builder builds pages from one dataset.
type Builder struct {
	ds     *pipeline.Dataset
	opts   Options
	logger *zap.Logger
}

// NewBuilder creates a builder. Zero options fall back to top 10 and a left join.
func NewBuilder(ds *pipeline.Dataset, opts Options, logger *zap.Logger) *Builder {
	if opts.TopN <= 0 {
		opts.TopN = pipeline.DefaultTopN
	}
	if opts.JoinMode == "" {
		opts.JoinMode = model.JoinLeft
	}
	return &Builder{ds: ds, opts: opts, logger: logger}
}

// Dataset returns the dataset the builder reads.
func (b *Builder) Dataset() *pipeline.Dataset { return b.ds }

// Page builds every section of page id. Section failures are recorded in the result; only
// an unknown page or a cancelled context is an error.
func (b *Builder) Page(ctx context.Context, id string) (PageResult, error) {
	page, ok := Lookup(id)
	if !ok {
		return PageResult{}, domainerrors.NotFound(fmt.Sprintf("unknown page %q", id))
	}

	in := &input{ds: b.ds, records: b.ds.Records(), opts: b.opts}
	res := PageResult{Page: page.ID, Title: page.Title, BuiltAt: time.Now()}
	for _, s := range page.Sections {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sr := b.run(page, s, in)
		if sr.Error != nil {
			res.Failed++
		}
		res.Sections = append(res.Sections, sr)
	}

	switch {
	case res.Failed == 0:
		res.Status = StatusCompleted
	case res.Failed == len(res.Sections):
		res.Status = StatusFailed
	default:
		res.Status = StatusPartial
	}
	return res, nil
}

// Section builds one section of a page.
func (b *Builder) Section(ctx context.Context, pageID, sectionID string) (SectionResult, error) {
	page, ok := Lookup(pageID)
	if !ok {
		return SectionResult{}, domainerrors.NotFound(fmt.Sprintf("unknown page %q", pageID))
	}
	for _, s := range page.Sections {
		if s.ID != sectionID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return SectionResult{}, err
		}
		return b.run(page, s, &input{ds: b.ds, records: b.ds.Records(), opts: b.opts}), nil
	}
	return SectionResult{}, domainerrors.NotFound(fmt.Sprintf("unknown section %q on page %q", sectionID, pageID))
}

// run builds one section, converting errors and panics into a section diagnostic.
func (b *Builder) run(page Page, s Section, in *input) (res SectionResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("section panicked",
				zap.String("page", page.ID),
				zap.String("section", s.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			res = SectionResult{ID: s.ID, Title: s.Title, Kind: s.Kind,
				Error: domainerrors.Internal(fmt.Sprintf("section failed: %v", r))}
		}
	}()

	var err error
	if err = in.ds.Require(s.Requires...); err == nil {
		res, err = s.build(in)
	}
	res.ID, res.Title, res.Kind = s.ID, s.Title, s.Kind
	res.HasChart = len(res.Chart) > 0

	if err != nil {
		res.Error = domainerrors.From(err)
		if res.Error.Code == domainerrors.CodeInternal {
			res.Error = domainerrors.Internal(err.Error())
		}
		b.logger.Warn("section failed",
			zap.String("page", page.ID),
			zap.String("section", s.ID),
			zap.String("code", string(res.Error.Code)),
			zap.Error(err))
		return res
	}
	b.logger.Debug("section built",
		zap.String("page", page.ID),
		zap.String("section", s.ID),
		zap.Duration("duration", time.Since(start)))
	return res
}
