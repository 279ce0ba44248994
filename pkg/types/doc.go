// Package types defines the contact and note entities, their validated field
// values, the Table storage interface, configuration, and the standard error
// values shared by the assistant packages.
//
// Entities are plain structs. Fields are immutable value types built through
// constructors (NewPhone, NewEmail, ...) that reject invalid input with an error
// wrapping ErrValidation.
package types
