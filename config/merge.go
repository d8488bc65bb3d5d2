package config

// mergeConfigs merges override configuration into base. Scalar fields win
// when set; lists replace rather than append.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Root.File != "" {
		result.Root = override.Root
	}
	if override.Poll.Interval != "" {
		result.Poll.Interval = override.Poll.Interval
	}
	if override.History.Capacity != 0 {
		result.History.Capacity = override.History.Capacity
	}
	result.Display = mergeDisplay(result.Display, override.Display)
	if len(override.Sources) > 0 {
		result.Sources = override.Sources
	}
	if override.Export.Dir != "" {
		result.Export.Dir = override.Export.Dir
	}
	if override.Journal.Enabled {
		result.Journal.Enabled = true
	}
	if override.Journal.Path != "" {
		result.Journal.Path = override.Journal.Path
	}
	if override.Daemon.Socket != "" {
		result.Daemon.Socket = override.Daemon.Socket
	}

	// Merge extensions
	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(result.Extensions)+len(override.Extensions))
		for key, value := range result.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have a map under the same key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}

func mergeDisplay(base, override DisplayConfig) DisplayConfig {
	result := base

	if override.Position != "" {
		result.Position = override.Position
	}
	if override.Theme != "" {
		result.Theme = override.Theme
	}
	if override.StartMinimized {
		result.StartMinimized = true
	}
	if override.FuzzySearch {
		result.FuzzySearch = true
	}
	if len(override.Ignore) > 0 {
		result.Ignore = override.Ignore
	}

	return result
}
