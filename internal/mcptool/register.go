package mcptool

import (
	"encoding/json"
	"os"
)

type serverEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// Register merges an MCP server entry into the .mcp.json at path, creating
// the file when absent. Other keys in the file are preserved.
func Register(path, name, command string, args []string, envVars map[string]string) error {
	var raw map[string]json.RawMessage
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		raw = make(map[string]json.RawMessage)
	} else {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	servers := make(map[string]serverEntry)
	if existing, ok := raw["mcpServers"]; ok {
		json.Unmarshal(existing, &servers)
	}

	entry := serverEntry{Command: command, Args: args}
	if len(envVars) > 0 {
		entry.Env = envVars
	}
	servers[name] = entry

	serversJSON, err := json.Marshal(servers)
	if err != nil {
		return err
	}
	raw["mcpServers"] = serversJSON

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}
