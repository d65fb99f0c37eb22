// Package seed loads the fixed set of companies, users and grants. Users are
// never created any other way.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/frahmantamala/financial-analyst/internal/auth"
	"github.com/frahmantamala/financial-analyst/internal/company"
	"github.com/frahmantamala/financial-analyst/internal/extraction"
	"gopkg.in/yaml.v3"
)

type File struct {
	Companies []CompanySeed  `yaml:"companies"`
	Users     []UserSeed     `yaml:"users"`
	Documents []DocumentSeed `yaml:"documents"`
}

type CompanySeed struct {
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
}

// UserSeed grants explicit companies by name and whole groups. Group grants
// are materialized as one row per company at seed time.
type UserSeed struct {
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Role      string   `yaml:"role"`
	Companies []string `yaml:"companies"`
	Groups    []string `yaml:"groups"`
}

type DocumentSeed struct {
	Company string `yaml:"company"`
	Path    string `yaml:"path"`
}

// Load reads a seed file. Relative document paths are resolved against the
// file's directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, d := range f.Documents {
		if d.Path != "" && !filepath.IsAbs(d.Path) {
			f.Documents[i].Path = filepath.Join(base, d.Path)
		}
	}
	return f, nil
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) Validate() error {
	names := map[string]bool{}
	for _, c := range f.Companies {
		if c.Name == "" {
			return errors.New("seed: company without a name")
		}
		names[c.Name] = true
	}
	for _, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			return errors.New("seed: user needs a username and a password")
		}
		if !auth.Role(u.Role).Valid() {
			return fmt.Errorf("seed: user %s has unknown role %q", u.Username, u.Role)
		}
		for _, c := range u.Companies {
			if !names[c] {
				return fmt.Errorf("seed: user %s is granted unknown company %q", u.Username, c)
			}
		}
	}
	for _, d := range f.Documents {
		if !names[d.Company] {
			return fmt.Errorf("seed: document %s belongs to unknown company %q", d.Path, d.Company)
		}
	}
	return nil
}

type Summary struct {
	Companies    int
	UsersCreated int
	UsersSkipped int
	Grants       int
}

type Seeder struct {
	users     *auth.Service
	companies *company.Service
	logger    *slog.Logger
}

func NewSeeder(users *auth.Service, companies *company.Service, logger *slog.Logger) *Seeder {
	return &Seeder{users: users, companies: companies, logger: logger}
}

// Apply creates missing companies and users and their grants. Running it
// twice leaves the database unchanged; existing users keep their password.
func (s *Seeder) Apply(ctx context.Context, f *File) (Summary, error) {
	var sum Summary

	for _, c := range f.Companies {
		if _, err := s.companies.Ensure(ctx, c.Name, c.Group); err != nil {
			return sum, fmt.Errorf("seed company %s: %w", c.Name, err)
		}
		sum.Companies++
	}

	for _, u := range f.Users {
		user, err := s.users.CreateUser(ctx, u.Username, u.Password, auth.Role(u.Role))
		switch {
		case errors.Is(err, auth.ErrUserExists):
			sum.UsersSkipped++
			s.logger.Info("user already exists; ensuring grants", "username", u.Username)
			user, err = s.users.FindByUsername(ctx, u.Username)
			if err != nil {
				return sum, fmt.Errorf("load user %s: %w", u.Username, err)
			}
		case err != nil:
			return sum, fmt.Errorf("seed user %s: %w", u.Username, err)
		default:
			sum.UsersCreated++
			s.logger.Info("user seeded", "username", user.Username, "role", user.Role)
		}

		for _, name := range u.Companies {
			c, err := s.companies.Ensure(ctx, name, "")
			if err != nil {
				return sum, err
			}
			if err := s.companies.Grant(ctx, user.ID, c.ID); err != nil {
				return sum, fmt.Errorf("grant %s to %s: %w", name, u.Username, err)
			}
			sum.Grants++
		}
		for _, group := range u.Groups {
			n, err := s.companies.GrantGroup(ctx, user.ID, group)
			if err != nil {
				return sum, fmt.Errorf("grant group %s to %s: %w", group, u.Username, err)
			}
			sum.Grants += n
		}
	}

	return sum, nil
}

// DataChecker reports whether a company already has stored financial data.
type DataChecker interface {
	HasData(ctx context.Context, companyID int64) (bool, error)
}

// Ingest processes every configured document whose company has no data yet.
// A failing document is logged and does not stop the others.
func (s *Seeder) Ingest(ctx context.Context, f *File, pipeline *extraction.Pipeline, data DataChecker) (processed int, err error) {
	for _, d := range f.Documents {
		c, err := s.companies.Ensure(ctx, d.Company, "")
		if err != nil {
			return processed, err
		}

		has, err := data.HasData(ctx, c.ID)
		if err != nil {
			return processed, err
		}
		if has {
			s.logger.Info("financial data already present; skipping document", "company", c.Name, "document", d.Path)
			continue
		}

		if _, err := pipeline.ProcessDocument(ctx, c.ID, d.Path); err != nil {
			s.logger.Error("document ingestion failed", "company", c.Name, "document", d.Path, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}
