// Package confirmorder implements the admin shortcut that confirms a pending order in one step.
package confirmorder
