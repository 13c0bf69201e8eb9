package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Profile is a named SQL data source. Instead of a dsn, a profile may carry
// driver specific connection keys (account, user, host, token, ...) in Params.
type Profile struct {
	Name   string
	Driver string
	DSN    string
	Table  string
	Params map[string]string
}

// ProfileRegistry reads data source profiles from an INI file:
//
//	[local]
//	driver = duckdb
//	dsn    = atlas.db
//
//	[warehouse]
//	driver    = snowflake
//	account   = acme
//	user      = atlas
//	password  = secret
//	database  = REF
//	warehouse = XS
//	table     = REF.PUBLIC.AIRPORTS
type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load profiles %s: %w", path, err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	p := &Profile{
		Name:   name,
		Driver: section.Key("driver").String(),
		DSN:    section.Key("dsn").String(),
		Table:  section.Key("table").MustString("airports"),
		Params: map[string]string{},
	}
	for _, key := range section.Keys() {
		switch key.Name() {
		case "driver", "dsn", "table":
		default:
			p.Params[key.Name()] = key.String()
		}
	}
	if p.Driver == "" {
		return nil, fmt.Errorf("profile %s has no driver", name)
	}
	if p.DSN == "" && len(p.Params) == 0 {
		return nil, fmt.Errorf("profile %s needs a dsn or connection keys", name)
	}
	return p, nil
}
