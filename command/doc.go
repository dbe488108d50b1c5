// Package command turns chat messages into order manager calls and formats
// the replies.
//
// Commands, addressed to the bot by name:
//
//	food start "<name>"[ from <restaurant>]
//	food for "<name>" get me <your order>
//	food check ["<name>"]
//	food end "<name>"
//	food help
package command
