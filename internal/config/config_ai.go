package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		retries := c.AI.MaxRetries
		opCfg.MaxRetries = &retries
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
	if opCfg.MaxOutputTokens == nil {
		tokens := c.AI.MaxOutputTokens
		opCfg.MaxOutputTokens = &tokens
	}
}

// GetAnalysisConfig returns the AI configuration used by the agent pipeline
func (c *Config) GetAnalysisConfig() OperationAIConfig {
	config := c.AI.Analysis
	c.applyOperationDefaults(&config)
	return config
}

// GetOutreachConfig returns the AI configuration used for outreach drafting
func (c *Config) GetOutreachConfig() OperationAIConfig {
	config := c.AI.Outreach
	c.applyOperationDefaults(&config)
	return config
}

// PersonaOverrides returns agent id -> instruction for every persona
// whose instruction was replaced. File content wins over inline text.
func (c *Config) PersonaOverrides() map[string]string {
	overrides := make(map[string]string)
	for id, agent := range c.AI.Agents {
		if agent.Prompt != "" {
			overrides[id] = agent.Prompt
		}
	}
	for id, content := range c.LoadedPrompts {
		overrides[id] = content
	}
	return overrides
}
