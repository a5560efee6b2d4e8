package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/woke/internal/domain/model"
)

type followupRecord struct {
	ID       string   `koanf:"id"`
	Question string   `koanf:"q"`
	Type     string   `koanf:"type"`
	Options  []string `koanf:"options"`
}

type serviceRecord struct {
	ID            string           `koanf:"id"`
	Label         string           `koanf:"label"`
	SkillTag      string           `koanf:"skill_tag"`
	Keywords      []string         `koanf:"keywords"`
	Followups     []followupRecord `koanf:"followups"`
	EstimateHours []float64        `koanf:"estimate_hours"`
}

type statsRecord struct {
	JobsDone       int      `koanf:"jobs_done" json:"jobs_done"`
	CompletionRate *float64 `koanf:"completion_rate" json:"completion_rate"`
}

// toModel fills a missing completion rate with the provider default.
func (r statsRecord) toModel() model.SkillStats {
	rate := model.DefaultCompletionRate
	if r.CompletionRate != nil {
		rate = *r.CompletionRate
	}
	return model.SkillStats{JobsDone: r.JobsDone, CompletionRate: rate}
}

func toSkillStats(recs map[string]statsRecord) map[string]model.SkillStats {
	if len(recs) == 0 {
		return nil
	}
	out := make(map[string]model.SkillStats, len(recs))
	for skill, r := range recs {
		out[skill] = r.toModel()
	}
	return out
}

type providerRecord struct {
	ID              string                 `koanf:"id"`
	Name            string                 `koanf:"name"`
	Lat             float64                `koanf:"lat"`
	Lng             float64                `koanf:"lng"`
	SkillTags       []string               `koanf:"skill_tags"`
	RateHour        float64                `koanf:"rate_hour"`
	ServiceRadiusKm float64                `koanf:"service_radius_km"`
	AvgRating       *float64               `koanf:"avg_rating"`
	Reliability     *float64               `koanf:"reliability"`
	Stats           map[string]statsRecord `koanf:"stats"`
}

type locationRecord struct {
	Lat float64 `koanf:"lat"`
	Lng float64 `koanf:"lng"`
}

type catalogRecord struct {
	DefaultLocation locationRecord   `koanf:"default_location"`
	Services        []serviceRecord  `koanf:"services"`
	Providers       []providerRecord `koanf:"providers"`
}

// FileCatalog reads services, providers and the default location from a YAML file.
type FileCatalog struct {
	path string
}

// NewFileCatalog returns a loader for the YAML catalog at path.
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

// Path returns the file the catalog is read from.
func (f *FileCatalog) Path() string { return f.path }

// Load parses the file into a Snapshot.
func (f *FileCatalog) Load(_ context.Context) (Snapshot, error) {
	rec, err := f.read()
	if err != nil {
		return Snapshot{}, err
	}

	services := make([]model.ServiceCategory, 0, len(rec.Services))
	for i := range rec.Services {
		svc, err := rec.Services[i].toModel()
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %s: services[%d]: %w", ErrLoadCatalog, f.path, i, err)
		}
		services = append(services, svc)
	}

	providers, err := toProviders(rec.Providers)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, f.path, err)
	}

	return Snapshot{
		Services:        services,
		Providers:       providers,
		DefaultLocation: model.Location{Lat: rec.DefaultLocation.Lat, Lng: rec.DefaultLocation.Lng},
	}, nil
}

// LoadProviders returns only the provider list of the file.
func (f *FileCatalog) LoadProviders(_ context.Context) ([]model.Provider, error) {
	rec, err := f.read()
	if err != nil {
		return nil, err
	}
	providers, err := toProviders(rec.Providers)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadProviders, f.path, err)
	}
	return providers, nil
}

func (f *FileCatalog) read() (catalogRecord, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(f.path), yaml.Parser()); err != nil {
		return catalogRecord{}, fmt.Errorf("%w: file %s: %w", ErrLoadCatalog, f.path, err)
	}
	var rec catalogRecord
	if err := k.UnmarshalWithConf("", &rec, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return catalogRecord{}, fmt.Errorf("%w: unmarshal %s: %w", ErrLoadCatalog, f.path, err)
	}
	return rec, nil
}

func (r *serviceRecord) toModel() (model.ServiceCategory, error) {
	svc := model.ServiceCategory{
		ID:       r.ID,
		Label:    r.Label,
		SkillTag: r.SkillTag,
		Keywords: r.Keywords,
	}
	switch len(r.EstimateHours) {
	case 0:
	case 2:
		if r.EstimateHours[0] > r.EstimateHours[1] {
			return model.ServiceCategory{}, fmt.Errorf("%w: estimate_hours low > high", ErrInvalidRecord)
		}
		svc.EstimateHours = [2]float64{r.EstimateHours[0], r.EstimateHours[1]}
	default:
		return model.ServiceCategory{}, fmt.Errorf("%w: estimate_hours needs two values, got %d", ErrInvalidRecord, len(r.EstimateHours))
	}
	for _, fu := range r.Followups {
		typ := fu.Type
		if typ == "" {
			typ = model.FollowupText
		}
		if typ != model.FollowupText && typ != model.FollowupSelect {
			return model.ServiceCategory{}, fmt.Errorf("%w: followup %q has type %q", ErrInvalidRecord, fu.ID, fu.Type)
		}
		svc.Followups = append(svc.Followups, model.Followup{
			ID:       fu.ID,
			Question: fu.Question,
			Type:     typ,
			Options:  fu.Options,
		})
	}
	return svc, nil
}

func toProviders(recs []providerRecord) ([]model.Provider, error) {
	out := make([]model.Provider, 0, len(recs))
	for i := range recs {
		r := &recs[i]
		if r.ID == "" {
			return nil, fmt.Errorf("%w: providers[%d] has no id", ErrInvalidRecord, i)
		}
		p := model.Provider{
			ID:              r.ID,
			Name:            r.Name,
			Lat:             r.Lat,
			Lng:             r.Lng,
			SkillTags:       r.SkillTags,
			RateHour:        r.RateHour,
			ServiceRadiusKm: r.ServiceRadiusKm,
			AvgRating:       r.AvgRating,
			Reliability:     r.Reliability,
			Stats:           toSkillStats(r.Stats),
		}
		if err := checkFinite(&p); err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

type numField struct {
	name string
	v    float64
}

// checkFinite rejects NaN and infinite numbers, which would break distance
// filtering and score ordering.
func checkFinite(p *model.Provider) error {
	fields := []numField{
		{"lat", p.Lat},
		{"lng", p.Lng},
		{"rate_hour", p.RateHour},
		{"service_radius_km", p.ServiceRadiusKm},
	}
	if p.AvgRating != nil {
		fields = append(fields, numField{"avg_rating", *p.AvgRating})
	}
	if p.Reliability != nil {
		fields = append(fields, numField{"reliability", *p.Reliability})
	}
	for skill, st := range p.Stats {
		fields = append(fields, numField{"stats." + skill + ".completion_rate", st.CompletionRate})
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: provider %s: %s is not a finite number", ErrInvalidRecord, p.ID, f.name)
		}
	}
	return nil
}
