package wipe

// OSProfile описывает подготовку окружения, специфичную для семейства ОС
type OSProfile struct {
	Method     string
	BootMethod string
	Features   []string
	Compatible bool
}

var osProfiles = map[OSType]OSProfile{
	OSWindows: {
		Method:     "Native storage driver sanitization",
		BootMethod: "Windows PE pre-boot environment",
		Features:   []string{"BitLocker metadata clear", "Volume shadow copy purge", "NTFS journal flush"},
		Compatible: true,
	},
	OSMacOS: {
		Method:     "APFS container sanitization",
		BootMethod: "macOS Recovery environment",
		Features:   []string{"FileVault key destruction", "APFS snapshot purge", "T2/SEP token invalidation"},
		Compatible: true,
	},
	OSLinux: {
		Method:     "Block device direct overwrite",
		BootMethod: "Live USB minimal environment",
		Features:   []string{"LUKS header wipe", "Swap area overwrite", "ext4/xfs journal flush"},
		Compatible: true,
	},
	OSAndroid: {
		Method:     "Userdata partition sanitization",
		BootMethod: "Fastboot recovery mode",
		Features:   []string{"File-based encryption key purge", "Userdata format", "Cache partition clear"},
		Compatible: true,
	},
	OSIOS: {
		Method:     "Effaceable storage key destruction",
		BootMethod: "DFU restore mode",
		Features:   []string{"Effaceable storage purge", "Keybag invalidation"},
		Compatible: true,
	},
	OSUnknown: {
		Method:     "Generic overwrite (best effort)",
		BootMethod: "External boot media",
		Features:   []string{"Raw device overwrite"},
		Compatible: false,
	},
}

// ProfileForOS возвращает профиль подготовки для семейства ОС.
// Незнакомое семейство деградирует к best-effort профилю (Compatible=false),
// запуск при этом не прерывается.
func ProfileForOS(os OSType) OSProfile {
	if profile, ok := osProfiles[os]; ok {
		return profile
	}
	return osProfiles[OSUnknown]
}
