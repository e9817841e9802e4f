// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, log level configuration, rotating
// file output, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "/var/log/restdemo.log"
//	  max_size: 50
//
// # Usage
//
//	log := logger.WithComponent("fetch")
//	log.Debug("request sent", logger.Fields("method", "GET", "path", "/me"))
package logger
