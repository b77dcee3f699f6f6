// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - SessionSecret: HMAC secret for stored session and reset tokens (required)
  - SessionTTL: session lifetime (default: 168h)
  - ResetTTL: password reset link lifetime (default: 1h)
  - UseEmulators: local development mode

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	--env-file        dotenv file (default: .env)
	--session-secret  Session token secret
	--session-ttl     Session lifetime
	--reset-ttl       Password reset link lifetime
	--emulators       Enable local development emulation

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	SESSION_SECRET → --session-secret
	SESSION_TTL    → --session-ttl
	RESET_TTL      → --reset-ttl
	USE_EMULATORS  → --emulators

The dotenv file is loaded first and never overrides variables that are
already set. CLI flags take precedence over both.

SITE_URL is not part of Config; package siteurl reads it on every call.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - SESSION_SECRET must be provided
*/
package cliparse
