package ipc

// Command names understood by the router.
const (
	CommandFileAssociation = "fileAssociation"
	CommandShortcut        = "shortcut"
	CommandContextMenu     = "contextMenu"
	CommandProtocol        = "protocol"
)

// ShutdownMessage is sent as raw text instead of a Command and stops the server.
const ShutdownMessage = "shutdown"

// Command is one routed instruction. It is built per call and never persisted.
type Command struct {
	Name       string            `json:"Name"`
	Properties map[string]string `json:"Properties"`
}

// Property returns a property value and whether it was present.
func (c Command) Property(key string) (string, bool) {
	if c.Properties == nil {
		return "", false
	}
	v, ok := c.Properties[key]
	return v, ok
}
