package cli

// Export internal functions for testing.

// RunMix exports runMix for testing.
var RunMix = runMix

// RunPlan exports runPlan for testing.
var RunPlan = runPlan

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// ClampJobs exports clampJobs for testing.
var ClampJobs = clampJobs

// SelectSessions exports selectSessions for testing.
var SelectSessions = selectSessions

// ResolveSettings exports resolveSettings for testing.
var ResolveSettings = resolveSettings

// IsValidConfigKey exports isValidConfigKey for testing.
var IsValidConfigKey = isValidConfigKey

// NewLogger exports newLogger for testing.
var NewLogger = newLogger

// MixOptions exports mixOptions for testing.
type MixOptions = mixOptions

// SettingsFlags exports settingsFlags for testing.
type SettingsFlags = settingsFlags
