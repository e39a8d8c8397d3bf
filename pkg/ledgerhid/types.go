package ledgerhid

// Message is a sequence of packets.
type Message []*packet

// packet represents one HID report of a Ledger APDU exchange.
type packet struct {
	channel  uint16
	tag      byte
	sequence uint16
	// length is only meaningful in the first packet of a message.
	length uint16
	data   []byte
}
