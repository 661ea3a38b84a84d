package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"

	"github.com/reillywatson/reviewturnaround/internal/calendar"
	"github.com/reillywatson/reviewturnaround/internal/stats"
)

// Config is the tool configuration, read from an optional YAML file and
// the environment.
type Config struct {
	Timezone         string        `yaml:"timezone" env:"REVIEW_TIMEZONE" env-default:"Europe/London" validate:"required,timezone"`
	WindowDays       int           `yaml:"window_days" env:"REVIEW_WINDOW_DAYS" env-default:"28" validate:"min=1"`
	DaysOld          int           `yaml:"days_old" env:"REVIEW_DAYS_OLD" env-default:"14" validate:"min=1"`
	TargetReviewTime time.Duration `yaml:"target_review_time" env:"REVIEW_TARGET" env-default:"3h30m" validate:"gt=0"`

	ExcludeAuthors  []string          `yaml:"exclude_authors" env:"REVIEW_EXCLUDE_AUTHORS" env-default:"dependabot"`
	IgnoreReviewers []string          `yaml:"ignore_reviewers" env:"REVIEW_IGNORE_REVIEWERS"`
	Names           map[string]string `yaml:"names"`
	OnlyNamed       bool              `yaml:"only_named" env:"REVIEW_ONLY_NAMED"`

	WorkingHours WorkingHours `yaml:"working_hours"`

	DataDir         string `yaml:"data_dir" env:"REVIEW_DATA_DIR" env-default:"data/raw" validate:"required"`
	OutputDir       string `yaml:"output_dir" env:"REVIEW_OUTPUT_DIR" env-default:"output" validate:"required"`
	TransformedFile string `yaml:"transformed_file" env:"REVIEW_TRANSFORMED_FILE" env-default:"transformed.json" validate:"required"`
	CacheDir        string `yaml:"cache_dir" env:"REVIEW_CACHE_DIR"`

	// GitHubAPIURL points at a GitHub Enterprise REST root. Empty means
	// api.github.com.
	GitHubAPIURL string `yaml:"github_api_url" env:"REVIEW_GITHUB_API_URL" validate:"omitempty,url"`
	GitHubToken  string `yaml:"-" env:"GITHUB_TOKEN"`
}

type WorkingHours struct {
	Default   Schedule            `yaml:"default"`
	Overrides map[string]Override `yaml:"overrides" validate:"dive"`
}

// Schedule is a weekly working pattern. Times are HH:MM local clock times.
type Schedule struct {
	Days       []string `yaml:"days" env-default:"mon,tue,wed,thu,fri" validate:"min=1,dive,oneof=mon tue wed thu fri sat sun"`
	Start      string   `yaml:"start" env-default:"09:00" validate:"datetime=15:04"`
	End        string   `yaml:"end" env-default:"17:30" validate:"datetime=15:04"`
	LunchStart string   `yaml:"lunch_start" env-default:"12:30" validate:"omitempty,datetime=15:04"`
	LunchEnd   string   `yaml:"lunch_end" env-default:"13:30" validate:"omitempty,datetime=15:04"`
}

// Override replaces parts of the default schedule for one reviewer; unset
// fields inherit the default.
type Override struct {
	Days       []string `yaml:"days" validate:"omitempty,dive,oneof=mon tue wed thu fri sat sun"`
	Start      string   `yaml:"start" validate:"omitempty,datetime=15:04"`
	End        string   `yaml:"end" validate:"omitempty,datetime=15:04"`
	LunchStart string   `yaml:"lunch_start" validate:"omitempty,datetime=15:04"`
	LunchEnd   string   `yaml:"lunch_end" validate:"omitempty,datetime=15:04"`
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Load reads the config file at path, if any, then the environment, and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "reading config from environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if _, err := c.WorkingHours.Default.schedule(time.UTC); err != nil {
		return err
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "loading timezone %q", c.Timezone)
	}
	return loc, nil
}

// Allow is the reviewer display-name allow-list: the configured names when
// OnlyNamed is set, otherwise empty.
func (c *Config) Allow() []string {
	if !c.OnlyNamed {
		return nil
	}
	return stats.NamedOnly(c.Names)
}

// Calendars builds the per-reviewer working calendars in loc.
func (c *Config) Calendars(loc *time.Location) (*calendar.Calendars, error) {
	def, err := c.WorkingHours.Default.schedule(loc)
	if err != nil {
		return nil, errors.Wrap(err, "default working hours")
	}
	cals := calendar.NewCalendars(def)
	for login, o := range c.WorkingHours.Overrides {
		s, err := o.apply(c.WorkingHours.Default).schedule(loc)
		if err != nil {
			return nil, errors.Wrapf(err, "working hours for %s", login)
		}
		cals.Override(login, s)
	}
	return cals, nil
}

func (o Override) apply(s Schedule) Schedule {
	if len(o.Days) > 0 {
		s.Days = o.Days
	}
	if o.Start != "" {
		s.Start = o.Start
	}
	if o.End != "" {
		s.End = o.End
	}
	if o.LunchStart != "" {
		s.LunchStart = o.LunchStart
	}
	if o.LunchEnd != "" {
		s.LunchEnd = o.LunchEnd
	}
	return s
}

func (s Schedule) schedule(loc *time.Location) (calendar.Schedule, error) {
	days := make([]time.Weekday, 0, len(s.Days))
	for _, d := range s.Days {
		wd, ok := weekdays[strings.ToLower(d)]
		if !ok {
			return calendar.Schedule{}, errors.Errorf("unknown weekday %q", d)
		}
		days = append(days, wd)
	}

	start, err := parseClock(s.Start)
	if err != nil {
		return calendar.Schedule{}, err
	}
	end, err := parseClock(s.End)
	if err != nil {
		return calendar.Schedule{}, err
	}
	if end <= start {
		return calendar.Schedule{}, errors.Errorf("working day ends at %s before it starts at %s", s.End, s.Start)
	}
	lunchStart, err := parseClock(s.LunchStart)
	if err != nil {
		return calendar.Schedule{}, err
	}
	lunchEnd, err := parseClock(s.LunchEnd)
	if err != nil {
		return calendar.Schedule{}, err
	}
	return calendar.NewSchedule(days, start, end, lunchStart, lunchEnd, loc), nil
}

// parseClock turns "HH:MM" into an offset from midnight. Empty is zero.
func parseClock(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing clock time %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
