package gamecache

import (
	"fmt"
	"regexp"
)

// builtinExclusions drops executables shipped next to games that are not
// games themselves: installers, crash reporters, SDK tools and launchers.
var builtinExclusions = []string{
	`unins.*`,
	`UnityCrashHandler.*`,
	`EasyAntiCheat.*`,
	`crashmsg`,
	`dxsetup`,
	`directx.*`,
	`vcredist.*`,
	`bspzip`,
	`hammer`,
	`height2normal`,
	`height2ssbump`,
	`hlfaceposer`,
	`shadercompile`,
	`splitskybox`,
	`CrashSender.*`,
	`RemoteCrashSender.*`,
	`addoninstaller`,
	`capture`,
	`hook-helper.*`,
	`LIV\.App.*`,
	`idevice\w+`,
	`idevice_id`,
	`ios_webskit_debug_proxy`,
	`iproxy`,
	`irecovery`,
	`plist.+`,
	`Updater`,
	`D3D.+`,
	`msedgewebview.*`,
	`notification_helper`,
	`vbsp`,
	`vpk`,
	`vrad`,
	`vtex`,
	`vtfdiff`,
	`vtfscrew`,
	`vvis`,
	`SymbolStoreUpdate`,
	`ShaderAPITest`,
	`mksheet`,
	`motionmapper`,
	`normal2ssbump`,
	`slices2volumetex`,
	`ohworkshopuploader`,
	`pfm2tgas`,
	`QC_Eyes`,
	`captioncompiler`,
	`demoinfo`,
	`dmxconvert`,
	`dmxedit`,
	`elementviewer`,
	`glview`,
	`IPA`,
	`ActivationUI`,
	`Cleanup`,
	`Touchup`,
	`overlayinjector`,
	`QuickEditDisable`,
	`resourcecompiler`,
	`steamutil.*`,
	`ui32`,
	`mod_uploader`,
	`asset_packer`,
	`asset_unpacker`,
	`apputil.*`,
	`diagnostics.*`,
	`.*server`,
	`.*launcher`,
	`.*setup`,
	`.*launch`,
	`.*installer`,
	`.*install`,
	`dump_versioned_json`,
	`make_versioned_json`,
	`start_protected_game`,
	`DumpTool`,
	`.*WebHelper`,
	`wallpaperservice.*`,
	`applicationwallpaperinject.*`,
	`webwallpaper.*`,
	`Steam360VideoPlayer`,
	`dotNet.*`,
	`planet_mapgen`,
	`steam`,
	`steamwebhelper`,
}

func BuiltinExclusions() []string {
	out := make([]string, len(builtinExclusions))
	copy(out, builtinExclusions)
	return out
}

// CompileExclusions compiles start-anchored, case-insensitive matchers. With
// override set the user list replaces the built-in one.
func CompileExclusions(user []string, override bool) ([]*regexp.Regexp, error) {
	patterns := user
	if !override {
		patterns = append(BuiltinExclusions(), user...)
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)^(?:" + pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("compile exclusion %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}

	return compiled, nil
}

func excluded(name string, exclusions []*regexp.Regexp) bool {
	for _, re := range exclusions {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
