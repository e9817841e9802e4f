// Package restyclient is the go-resty adapter for rest.Client.
//
// Headers pass straight through to resty. The mode and cache options are
// accepted and validated but have no resty equivalent, so this adapter
// ignores them and logs that it did so at debug level. Code that depends on
// cache directives reaching the server should use the fetch adapter.
package restyclient
