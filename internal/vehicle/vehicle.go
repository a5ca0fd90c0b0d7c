// Package vehicle holds static vehicle and track catalogs plus the BLE
// identifiers an external transport needs to reach the link characteristics.
package vehicle

import (
	"fmt"

	"github.com/google/uuid"
)

var (
	ServiceUUID             = uuid.MustParse("BE15BEEF-6186-407E-8381-0BD89C4D8DF4")
	ReadCharacteristicUUID  = uuid.MustParse("BE15BEE0-6186-407E-8381-0BD89C4D8DF4")
	WriteCharacteristicUUID = uuid.MustParse("BE15BEE1-6186-407E-8381-0BD89C4D8DF4")
)

// Model is the model identifier advertised by a vehicle.
type Model uint8

var modelNames = map[Model]string{
	0x01: "kourai",
	0x02: "boson",
	0x03: "rho",
	0x04: "katal",
	0x05: "hadion",
	0x06: "spektrix",
	0x07: "corax",
	0x08: "groundshock",
	0x09: "skull",
	0x0a: "thermo",
	0x0b: "nuke",
	0x0c: "guardian",
	0x0e: "bigbang",
	0x0f: "freewheel",
	0x10: "x52",
	0x11: "x52ice",
	0x12: "mammoth",
	0x13: "dynamo",
	0x14: "ghost",
}

func (m Model) Name() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return "unknown"
}

func (m Model) String() string {
	return fmt.Sprintf("%s(0x%02x)", m.Name(), uint8(m))
}

// Models returns every known model in identifier order.
func Models() []Model {
	out := make([]Model, 0, len(modelNames))
	for id := Model(0); id < 0xff; id++ {
		if _, ok := modelNames[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ParseUUID checks that raw is one of the link identifiers.
func ParseUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	switch id {
	case ServiceUUID, ReadCharacteristicUUID, WriteCharacteristicUUID:
		return id, true
	}
	return uuid.Nil, false
}
