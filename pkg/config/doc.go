// Package config implements a hierarchical, path-addressed configuration
// store.
//
// A [Config] is the root of a tree of named sections holding scalars, lists
// and further sections, addressed by separator-delimited paths such as
// "server.port". The tree is backed by a [Resource] and encoded with a
// [codec.Codec]; the [ReloadMode] decides when the two are synchronized.
//
//	cfg, err := config.Open("app.yaml", config.WithReloadMode(config.ReloadIntelligent))
//	if err != nil {
//		return err
//	}
//	if _, err := cfg.Set("server.port", 8080); err != nil {
//		return err
//	}
//	port, err := cfg.GetIntOr("server.port", 80)
//
// # Paths
//
// Paths are split literally on the separator: no trimming, no escaping.
// "a..b" addresses key "b" inside a section named "" inside "a".
//
// # Reload Modes
//
//   - ReloadManual: only Load, Save and Reload touch the resource.
//   - ReloadIntelligent: reads reload when the resource's modification time
//     differs from the one recorded at the last sync; Set saves when the value
//     changed; section creation always saves.
//   - ReloadAutomatic: every read reloads and every write saves.
//
// The recorded modification time is refreshed after every sync attempt,
// including failed ones. A resource whose modification time cannot be read
// records the zero time, so a removed file is reloaded once and not retried
// until it reappears.
//
// # Typed Accessors
//
// GetInt, GetIntOr and the other typed accessors fall back to a zero value or
// the given default when the stored value has another kind. Reload failures
// and paths that descend through a scalar are returned as errors.
//
// # Objects
//
// Values whose type is serializable according to the Config's
// [serial.Registry] are stored as sections and read back with
// [GetSerializable].
package config
