package channel

import "o365sync/internal/structs"

// Requests carries run requests from the HTTP surface to the engine loop.
var Requests = make(chan structs.RunRequest, 1)
