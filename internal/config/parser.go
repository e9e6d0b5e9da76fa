package config

import (
	"context"
	"fmt"
	"os"

	"github.com/zshup/zshup/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// ParseError represents a config parsing error with a friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// Parser applies Lua config overrides on top of a base configuration.
type Parser struct {
	detector platform.Detector
	logger   Logger
}

// NewParser creates a config parser. The detector feeds the read-only
// platform table available to config code; a nil detector skips it.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: defaultLogger()}
}

// SetLogger replaces the parser's logger.
func (p *Parser) SetLogger(logger Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// ParseFile loads overrides from a Lua file onto a copy of base. A missing
// file returns base unchanged: overrides are optional.
func (p *Parser) ParseFile(ctx context.Context, path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.Debug("no config override", "path", path)
			return base, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	p.logger.Debug("loading config override", "path", path)
	return p.ParseString(ctx, string(data), base)
}

// ParseString applies Lua overrides from source code onto a copy of base.
func (p *Parser) ParseString(ctx context.Context, luaCode string, base *Config) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		platform.InjectPlatformTable(L, info)
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	cfg := *base // shallow copy; overridden slices are replaced wholesale
	if err := applyOverrides(L, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyOverrides reads the global "zshup" table and overrides the fields
// it names. An absent table means no overrides at all.
func applyOverrides(L *lua.LState, cfg *Config) error {
	root := L.GetGlobal("zshup")
	if root.Type() == lua.LTNil {
		return nil
	}
	if root.Type() != lua.LTTable {
		return &ParseError{
			Message: "invalid 'zshup' value",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)

	if v := table.RawGetString("packages"); v.Type() == lua.LTTable {
		pt := v.(*lua.LTable)
		if req, ok, err := stringSlice(pt.RawGetString("required"), "packages.required"); err != nil {
			return err
		} else if ok {
			cfg.Packages.Required = req
		}
		if opt, ok, err := stringSlice(pt.RawGetString("optional"), "packages.optional"); err != nil {
			return err
		} else if ok {
			cfg.Packages.Optional = opt
		}
	}

	if v := table.RawGetString("plugins"); v.Type() == lua.LTTable {
		plugins, err := extractPlugins(v.(*lua.LTable))
		if err != nil {
			return err
		}
		cfg.Plugins = plugins
	}

	if v := table.RawGetString("zshrc"); v.Type() == lua.LTString {
		cfg.ZshrcPath = v.String()
	}

	if v := table.RawGetString("ohmyzsh"); v.Type() == lua.LTTable {
		ot := v.(*lua.LTable)
		if dir := ot.RawGetString("dir"); dir.Type() == lua.LTString {
			cfg.OhMyZsh.Dir = dir.String()
		}
		if repo := ot.RawGetString("repo"); repo.Type() == lua.LTString {
			cfg.OhMyZsh.RepoURL = repo.String()
		}
	}

	if v := table.RawGetString("kitty"); v.Type() == lua.LTTable {
		kt := v.(*lua.LTable)
		if enabled := kt.RawGetString("enabled"); enabled.Type() == lua.LTBool {
			cfg.Kitty.Enabled = bool(enabled.(lua.LBool))
		}
		if conf := kt.RawGetString("conf"); conf.Type() == lua.LTString {
			cfg.Kitty.ConfPath = conf.String()
		}
	}

	if v := table.RawGetString("fonts"); v.Type() == lua.LTTable {
		ft := v.(*lua.LTable)
		if enabled := ft.RawGetString("enabled"); enabled.Type() == lua.LTBool {
			cfg.Fonts.Enabled = bool(enabled.(lua.LBool))
		}
		if dir := ft.RawGetString("dir"); dir.Type() == lua.LTString {
			cfg.Fonts.Dir = dir.String()
		}
		if urls, ok, err := stringSlice(ft.RawGetString("urls"), "fonts.urls"); err != nil {
			return err
		} else if ok {
			cfg.Fonts.URLs = urls
		}
	}

	if v := table.RawGetString("set_default_shell"); v.Type() == lua.LTBool {
		cfg.SetDefaultShell = bool(v.(lua.LBool))
	}

	return nil
}

// extractPlugins converts a Lua array of {name=..., url=...} tables (or
// bare strings for builtin plugins) into the plugin list.
func extractPlugins(table *lua.LTable) ([]Plugin, error) {
	var plugins []Plugin
	var convErr error

	table.ForEach(func(_, value lua.LValue) {
		if convErr != nil {
			return
		}
		switch v := value.(type) {
		case lua.LString:
			plugins = append(plugins, Plugin{Name: string(v)})
		case *lua.LTable:
			p := Plugin{}
			if name := v.RawGetString("name"); name.Type() == lua.LTString {
				p.Name = name.String()
			}
			if u := v.RawGetString("url"); u.Type() == lua.LTString {
				p.URL = u.String()
			}
			if p.Name == "" {
				convErr = &ParseError{
					Message: "invalid plugin entry",
					Detail:  "plugin table requires a 'name' field",
				}
				return
			}
			plugins = append(plugins, p)
		default:
			convErr = &ParseError{
				Message: "invalid plugin entry",
				Detail:  fmt.Sprintf("expected string or table, got %s", value.Type()),
			}
		}
	})

	if convErr != nil {
		return nil, convErr
	}
	return plugins, nil
}

// stringSlice converts a Lua value to a []string. The second return is
// false when the value is absent (nil), letting callers keep defaults.
func stringSlice(value lua.LValue, field string) ([]string, bool, error) {
	if value.Type() == lua.LTNil {
		return nil, false, nil
	}
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, false, &ParseError{
			Message: fmt.Sprintf("invalid '%s' value", field),
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	var out []string
	var convErr error
	table.ForEach(func(_, v lua.LValue) {
		if convErr != nil {
			return
		}
		if v.Type() != lua.LTString {
			convErr = &ParseError{
				Message: fmt.Sprintf("invalid '%s' entry", field),
				Detail:  fmt.Sprintf("expected string, got %s", v.Type()),
			}
			return
		}
		out = append(out, v.String())
	})

	if convErr != nil {
		return nil, false, convErr
	}
	return out, true, nil
}
