// Package removecancelledorder lets an admin hard-delete a cancelled order with its article snapshots.
package removecancelledorder
