// Package theme picks the overlay text color from the color scheme and
// renders the stylesheet applied to the overlay window.
package theme
