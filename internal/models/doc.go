// Package models defines domain entities and persistence interfaces for healthart.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): values decoded from the metrics provider
//   - [MetricSnapshot] : the recovery score plus optional sleep, strain and HRV metrics
//
// 2. Persistent Entities: database-backed gallery records
//   - [Artwork] : a generated image together with the prompt and metrics that produced it
//
// Persistent entities implement the [Model] interface; [Repository] defines the CRUD contract.
package models
