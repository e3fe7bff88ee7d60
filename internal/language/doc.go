// Package language normalizes stream language codes and renders display
// names. Codes come from container metadata in ISO 639-1, ISO 639-2 (either
// variant) or BCP 47 form.
package language
