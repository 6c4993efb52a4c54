// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The only entity is Task. Status and Priority are closed value types; every
// consumer switches over their constants exhaustively.
package domain
