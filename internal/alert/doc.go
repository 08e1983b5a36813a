// Package alert defines the one-shot alert channel and the localized alert texts.
package alert
