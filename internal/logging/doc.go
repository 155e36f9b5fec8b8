// Package logging builds the structured zap logger used by the confres command.
package logging
