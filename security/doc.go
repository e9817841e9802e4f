// Package security builds client TLS settings for the rest adapters.
//
//	client:
//	  base_url: https://api.internal
//	  tls:
//	    ca_file: /etc/ssl/internal-ca.pem
//	    min_version: "1.3"
package security
