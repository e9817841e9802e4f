// Package fetch is the net/http adapter for rest.Client.
//
// Request options are translated into request-init fields the way a browser
// fetch call would send them: mode becomes Sec-Fetch-Mode and cache becomes
// Cache-Control/Pragma directives. Post bodies default to
// Content-Type: application/json; caller headers always win.
package fetch
