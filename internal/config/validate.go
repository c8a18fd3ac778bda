package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus structured
// errors/warnings the UI can render directly.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Intake.SearchSubjectAny = trimList(out.Intake.SearchSubjectAny)

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Server.RateLimitPerSec < 0 {
		res.addErr("server.rate_limit_per_sec must be >= 0")
	}
	if out.Server.RateLimitPerSec > 0 && out.Server.RateLimitBurst <= 0 {
		res.addErr("server.rate_limit_burst must be > 0 when rate limiting is on")
	}

	// cache sanity
	if out.Cache.DefaultTTLSeconds < 0 {
		res.addErr("cache.default_ttl_seconds must be >= 0")
	}
	if out.Cache.WarmIntervalSeconds > 0 && out.Cache.WarmIntervalSeconds < 30 {
		res.addWarn("cache.warm_interval_seconds is very low (%d); warming re-runs the dashboard queries.", out.Cache.WarmIntervalSeconds)
	}
	seenPrefix := map[string]bool{}
	for i, s := range out.Cache.Strategies {
		if strings.TrimSpace(s.Prefix) == "" {
			res.addErr("cache.strategies[%d].prefix is required", i)
		}
		if s.TTLSeconds <= 0 {
			res.addErr("cache.strategies[%d].ttl_seconds must be > 0", i)
		}
		if seenPrefix[s.Prefix] {
			res.addWarn("cache.strategies has duplicate prefix %q; the last one wins", s.Prefix)
		}
		seenPrefix[s.Prefix] = true
	}

	// intake required fields if enabled (password not required here; it's in keychain)
	if out.Intake.Enabled {
		if strings.TrimSpace(out.Intake.IMAPHost) == "" {
			res.addErr("intake.imap_host is required when intake.enabled=true")
		}
		if out.Intake.IMAPPort == 0 {
			res.addErr("intake.imap_port is required when intake.enabled=true")
		}
		if strings.TrimSpace(out.Intake.Username) == "" {
			res.addErr("intake.username is required when intake.enabled=true")
		}
		if strings.TrimSpace(out.Intake.Mailbox) == "" {
			res.addErr("intake.mailbox is required when intake.enabled=true")
		}
		if len(out.Intake.SearchSubjectAny) == 0 {
			res.addWarn("intake.search_subject_any is empty; every unseen message becomes an application.")
		}
		if out.Intake.PollSeconds > 0 && out.Intake.PollSeconds < 10 {
			res.addWarn("intake.poll_seconds is very low (%d) and may trip IMAP rate limits.", out.Intake.PollSeconds)
		}
	}

	// scoring sanity
	if out.Scoring.NotifyMinScore < 0 {
		res.addErr("scoring.notify_min_score must be >= 0")
	}
	if out.Scoring.ExperiencePerYear < 0 {
		res.addErr("scoring.experience_per_year must be >= 0")
	}
	for level := range out.Scoring.EducationWeights {
		switch level {
		case "high_school", "bachelor", "master", "phd":
		default:
			res.addWarn("scoring.education_weights has unknown level %q", level)
		}
	}

	return out, res
}
