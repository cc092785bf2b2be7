package config

// Config is the on-disk YAML configuration for zj-sidebar.
type Config struct {
	Sidebar Sidebar `yaml:"sidebar"`
	Alerts  Alerts  `yaml:"alerts"`
	Poll    Poll    `yaml:"poll"`
	Names   Names   `yaml:"names"`
	Colors  Colors  `yaml:"colors"`
}

type Sidebar struct {
	Width          int    `yaml:"width"`           // expanded width in columns
	CollapsedWidth int    `yaml:"collapsed_width"` // collapsed width in columns
	ToggleKey      string `yaml:"toggle_key"`      // key that flips collapsed/expanded
}

type Alerts struct {
	TickMs       int   `yaml:"tick_ms"`       // flash alternation period
	DefaultFlash uint8 `yaml:"default_flash"` // flash units when a notify request omits them
}

// Poll tunes the adaptive cadence for watching the shared collapse slot.
type Poll struct {
	FloorMs   int     `yaml:"floor_ms"`
	CeilingMs int     `yaml:"ceiling_ms"`
	Growth    float64 `yaml:"growth"`
}

type Names struct {
	Decorate bool `yaml:"decorate"` // replace host default names with generated ones
}

type Colors struct {
	Fg        string `yaml:"fg"`        // default text (default: #cccccc)
	Bg        string `yaml:"bg"`        // sidebar background (default: #1c1c1c)
	ActiveFg  string `yaml:"active_fg"` // active tab text (default: #1c1c1c)
	ActiveBg  string `yaml:"active_bg"` // active tab background (default: #cccccc)
	Success   string `yaml:"success"`   // command succeeded flash (default: #27ae60)
	Failure   string `yaml:"failure"`   // command failed flash (default: #e74c3c)
	Notify    string `yaml:"notify"`    // notification flash (default: #f39c12)
	Mode      string `yaml:"mode"`      // mode line background (default: #27ae60)
	Separator string `yaml:"separator"` // header rule (default: #444444)
}
