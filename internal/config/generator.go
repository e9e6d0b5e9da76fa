package config

import (
	"bytes"
	"fmt"
	"strings"
)

// Generator emits a Config as a Lua override file. It is used by
// `zshup genconfig` to hand users an editable starting point.
type Generator struct {
	indent string
}

// NewGenerator creates a Lua config generator.
func NewGenerator() *Generator {
	return &Generator{indent: "  "}
}

// Generate renders the config as formatted, human-readable Lua code.
func (g *Generator) Generate(cfg *Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("cannot generate invalid config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("-- zshup configuration\n")
	buf.WriteString("-- Delete any section to keep the built-in default.\n")
	buf.WriteString("-- The read-only 'platform' table is available here,\n")
	buf.WriteString("-- e.g. platform.is_debian_family.\n\n")

	buf.WriteString("zshup = {\n")

	g.writePackages(&buf, cfg.Packages)
	g.writePlugins(&buf, cfg.Plugins)

	fmt.Fprintf(&buf, "%szshrc = %s,\n\n", g.indent, luaString(cfg.ZshrcPath))

	fmt.Fprintf(&buf, "%sohmyzsh = {\n", g.indent)
	fmt.Fprintf(&buf, "%sdir = %s,\n", g.indent+g.indent, luaString(cfg.OhMyZsh.Dir))
	fmt.Fprintf(&buf, "%srepo = %s,\n", g.indent+g.indent, luaString(cfg.OhMyZsh.RepoURL))
	fmt.Fprintf(&buf, "%s},\n\n", g.indent)

	fmt.Fprintf(&buf, "%skitty = {\n", g.indent)
	fmt.Fprintf(&buf, "%senabled = %t,\n", g.indent+g.indent, cfg.Kitty.Enabled)
	fmt.Fprintf(&buf, "%sconf = %s,\n", g.indent+g.indent, luaString(cfg.Kitty.ConfPath))
	fmt.Fprintf(&buf, "%s},\n\n", g.indent)

	fmt.Fprintf(&buf, "%sfonts = {\n", g.indent)
	fmt.Fprintf(&buf, "%senabled = %t,\n", g.indent+g.indent, cfg.Fonts.Enabled)
	fmt.Fprintf(&buf, "%sdir = %s,\n", g.indent+g.indent, luaString(cfg.Fonts.Dir))
	fmt.Fprintf(&buf, "%s},\n\n", g.indent)

	fmt.Fprintf(&buf, "%sset_default_shell = %t,\n", g.indent, cfg.SetDefaultShell)
	buf.WriteString("}\n")

	return buf.String(), nil
}

func (g *Generator) writePackages(buf *bytes.Buffer, packages Packages) {
	fmt.Fprintf(buf, "%spackages = {\n", g.indent)
	fmt.Fprintf(buf, "%srequired = { %s },\n", g.indent+g.indent, luaStringList(packages.Required))
	fmt.Fprintf(buf, "%soptional = { %s },\n", g.indent+g.indent, luaStringList(packages.Optional))
	fmt.Fprintf(buf, "%s},\n\n", g.indent)
}

func (g *Generator) writePlugins(buf *bytes.Buffer, plugins []Plugin) {
	fmt.Fprintf(buf, "%splugins = {\n", g.indent)
	for _, p := range plugins {
		if p.URL == "" {
			fmt.Fprintf(buf, "%s%s,\n", g.indent+g.indent, luaString(p.Name))
			continue
		}
		fmt.Fprintf(buf, "%s{ name = %s, url = %s },\n",
			g.indent+g.indent, luaString(p.Name), luaString(p.URL))
	}
	fmt.Fprintf(buf, "%s},\n\n", g.indent)
}

// luaString quotes a string as a Lua literal.
func luaString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func luaStringList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, luaString(item))
	}
	return strings.Join(quoted, ", ")
}
