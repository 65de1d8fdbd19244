// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http serves the local status surface of the client.
//
// It reports the room channel, the offline queue and the presence mesh as
// JSON, lets an operator settle conflicts without the terminal UI, and
// exposes the Prometheus collectors. Every request gets a trace id and an
// access log line.
package http
