package icons

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Icon keys used by the site.
const (
	Email         = "email"
	Bluesky       = "bluesky"
	GitHub        = "github"
	LinkedIn      = "linkedin"
	Instagram     = "instagram"
	Medium        = "medium"
	StackOverflow = "stackoverflow"
	Threads       = "threads"
	Calendar      = "calendar"
	ChevronLeft   = "chevronLeft"
)

// AppIcons maps icon keys to iconify identifiers.
var AppIcons = map[string]string{
	Bluesky:       "proicons:bluesky",
	Email:         "mdi:email-outline",
	GitHub:        "mdi:github",
	LinkedIn:      "mdi:linkedin",
	Instagram:     "mdi:instagram",
	Medium:        "simple-icons:medium",
	StackOverflow: "mdi:stack-overflow",
	Threads:       "simple-icons:threads",
	Calendar:      "mdi:calendar-month",
	ChevronLeft:   "mdi:chevron-left",
}

// IconLink is one linked icon. Size and Color are optional display hints.
type IconLink struct {
	Icon  string `yaml:"icon" json:"icon"`
	Href  string `yaml:"href" json:"href"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Size  int    `yaml:"size,omitempty" json:"size,omitempty"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// Config is the icon and link configuration handed to the rendering layer.
type Config struct {
	Icons  map[string]string `yaml:"icons" json:"icons"`
	About  []IconLink        `yaml:"about" json:"about"`
	Footer []IconLink        `yaml:"footer" json:"footer"`
}

// Defaults returns the built-in configuration. The footer email link is
// only added when contactEmail is set.
func Defaults(contactEmail string) *Config {
	icons := make(map[string]string, len(AppIcons))
	for k, v := range AppIcons {
		icons[k] = v
	}

	cfg := &Config{
		Icons: icons,
		About: []IconLink{
			{Icon: icons[Bluesky], Href: "https://bsky.app/profile/andersco.bsky.social", Title: "Bluesky"},
			{Icon: icons[GitHub], Href: "https://github.com/andersr", Title: "GitHub"},
			{Icon: icons[Instagram], Href: "https://instagram.com", Title: "Instagram"},
			{Icon: icons[LinkedIn], Href: "https://www.linkedin.com/in/andersramsay/", Title: "LinkedIn"},
			{Icon: icons[Medium], Href: "https://medium.com/@andersco", Title: "Medium", Size: 30},
			{Icon: icons[StackOverflow], Href: "https://stackoverflow.com/users/2008639/andersr", Title: "Stack Overflow"},
			{Icon: icons[Threads], Href: "https://www.threads.net/@andersr", Title: "Threads"},
		},
	}

	if contactEmail != "" {
		cfg.Footer = append(cfg.Footer, IconLink{Icon: icons[Email], Href: mailto(contactEmail), Title: "Email"})
	}
	cfg.Footer = append(cfg.Footer,
		IconLink{Icon: icons[GitHub], Href: "https://github.com/andersr", Title: "GitHub"},
		IconLink{Icon: icons[LinkedIn], Href: "https://www.linkedin.com/in/andersramsay/", Title: "LinkedIn"},
	)
	return cfg
}

func mailto(addr string) string {
	if strings.HasPrefix(addr, "mailto:") {
		return addr
	}
	return "mailto:" + addr
}

// Load returns the defaults overridden by the YAML file at path.
// Icons are merged key by key; a non-empty about or footer list replaces the
// default list. Link icons may name a key of the icon table.
func Load(path, contactEmail string) (*Config, error) {
	cfg := Defaults(contactEmail)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read icons file: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse icons yaml: %w", err)
	}

	for k, v := range override.Icons {
		cfg.Icons[k] = v
	}
	if len(override.About) > 0 {
		cfg.About = cfg.resolve(override.About)
	}
	if len(override.Footer) > 0 {
		cfg.Footer = cfg.resolve(override.Footer)
	}
	return cfg, nil
}

func (c *Config) resolve(links []IconLink) []IconLink {
	out := make([]IconLink, len(links))
	for i, l := range links {
		if id, ok := c.Icons[l.Icon]; ok {
			l.Icon = id
		}
		out[i] = l
	}
	return out
}
