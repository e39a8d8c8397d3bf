package ledgerhid

const (
	// Channel is the fixed channel id every Ledger HID packet carries.
	Channel uint16 = 0x0101
	// TagAPDU marks a packet as part of an APDU.
	TagAPDU byte = 0x05

	// ReportSize is the HID report size without the report id.
	ReportSize = 64
	// PacketSize is what is written to the device: report id + report.
	PacketSize = ReportSize + 1

	// headerSize is channel (2) + tag (1) + sequence index (2).
	headerSize = 5
	// lengthSize is the big-endian total length at the start of a message.
	lengthSize = 2

	// MaxMessageSize is the largest payload the 2-byte length can describe.
	MaxMessageSize = 0xffff
)

// ReportID is always 0: Ledger devices do not use numbered reports.
const ReportID byte = 0x00
