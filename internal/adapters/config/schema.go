package config

// The misspelled steamapp_exlusions keys are kept so existing config files
// keep working.
type fileSchema struct {
	Debug                      bool            `mapstructure:"debug" json:"debug" toml:"debug"`
	Monitor                    int             `mapstructure:"monitor" json:"monitor" toml:"monitor"`
	ButtonCount                int             `mapstructure:"button_count" json:"button_count" toml:"button_count"`
	ControlCount               int             `mapstructure:"control_count" json:"control_count,omitempty" toml:"control_count,omitempty"`
	AutoClose                  bool            `mapstructure:"auto_close" json:"auto_close" toml:"auto_close"`
	CloseOnDeselect            bool            `mapstructure:"close_on_deselect" json:"close_on_deselect" toml:"close_on_deselect"`
	FgColor                    string          `mapstructure:"fg_color" json:"fg_color" toml:"fg_color"`
	BgColor                    string          `mapstructure:"bg_color" json:"bg_color" toml:"bg_color"`
	ShowProcessCount           bool            `mapstructure:"show_process_count" json:"show_process_count" toml:"show_process_count"`
	MinWidth                   int             `mapstructure:"min_width" json:"min_width" toml:"min_width"`
	SpacerPosition             int             `mapstructure:"spacer_position" json:"spacer_position" toml:"spacer_position"`
	AutoFill                   bool            `mapstructure:"auto_fill" json:"auto_fill" toml:"auto_fill"`
	SteamLibraryFolders        []string        `mapstructure:"steam_library_folders" json:"steam_library_folders" toml:"steam_library_folders"`
	GetSteamGames              bool            `mapstructure:"get_steam_games" json:"get_steam_games" toml:"get_steam_games"`
	SteamGameCacheTimeout      int             `mapstructure:"steam_game_cache_timeout" json:"steam_game_cache_timeout" toml:"steam_game_cache_timeout"`
	SteamGameCacheFile         string          `mapstructure:"steam_game_cache_file" json:"steam_game_cache_file" toml:"steam_game_cache_file"`
	SteamappExclusions         []string        `mapstructure:"steamapp_exlusions" json:"steamapp_exlusions" toml:"steamapp_exlusions"`
	OverrideSteamappExclusions bool            `mapstructure:"override_steamapp_exlusions" json:"override_steamapp_exlusions" toml:"override_steamapp_exlusions"`
	AutoFillControl            *controlSchema  `mapstructure:"auto_fill_control" json:"auto_fill_control" toml:"auto_fill_control"`
	Controls                   []controlSchema `mapstructure:"controls" json:"controls" toml:"controls"`
}

type controlSchema struct {
	Name        string   `mapstructure:"name" json:"name" toml:"name"`
	Targets     []string `mapstructure:"target_applications" json:"target_applications" toml:"target_applications"`
	UseAppTitle bool     `mapstructure:"use_app_title" json:"use_app_title" toml:"use_app_title"`
	UseAppName  bool     `mapstructure:"use_app_name" json:"use_app_name" toml:"use_app_name"`
	OnlyFirst   bool     `mapstructure:"only_first" json:"only_first" toml:"only_first"`
	Exclude     bool     `mapstructure:"exclude" json:"exclude" toml:"exclude"`
	Master      bool     `mapstructure:"master" json:"master" toml:"master"`
	FgColor     string   `mapstructure:"fg_color" json:"fg_color" toml:"fg_color"`
	BgColor     string   `mapstructure:"bg_color" json:"bg_color" toml:"bg_color"`
	BgColor2    string   `mapstructure:"bg_color2" json:"bg_color2" toml:"bg_color2"`
}
