package catalog

import "github.com/Mnaffeti/sovd-server/internal/uds"

// NewDefault はカタログファイル未指定時の組込み車両定義を返す。
// デモおよびループバックトランスポートでの動作確認に使う。
func NewDefault() *Catalog {
	doc := catalogFile{
		Components: []componentDef{
			{
				ID:      "engine",
				Name:    "Engine Control Module",
				Address: 0x7E0,
				DataItems: []DataItem{
					{ID: "vin", Name: "Vehicle Identification Number", DID: uds.DIDVIN,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 17}},
					{ID: "ecu_serial_number", Name: "ECU Serial Number", DID: uds.DIDECUSerialNumber,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 12}},
					{ID: "manufacturing_date", Name: "Manufacturing Date", DID: uds.DIDManufacturingDate,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecBCD, Length: 4}},
					{ID: "ecu_hardware_version", Name: "ECU Hardware Version", DID: uds.DIDHardwareVersion,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 8}},
					{ID: "ecu_software_version", Name: "ECU Software Version", DID: uds.DIDSoftwareVersion,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 8}},
					{ID: "system_supplier_id", Name: "System Supplier ID", DID: uds.DIDSystemSupplierID,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 10}},
					{ID: "coolant_temperature", Name: "Coolant Temperature", DID: 0x0105,
						Category: CategoryCurrentData,
						Codec:    uds.ValueCodec{Kind: uds.CodecScaled, Length: 1, Factor: 1, Offset: -40, Unit: "degC"}},
					{ID: "engine_speed", Name: "Engine Speed", DID: 0x010C,
						Category: CategoryCurrentData,
						Codec:    uds.ValueCodec{Kind: uds.CodecScaled, Length: 2, Factor: 0.25, Offset: 0, Unit: "rpm"}},
					{ID: "battery_voltage", Name: "Battery Voltage", DID: 0x0142,
						Category: CategoryCurrentData,
						Codec:    uds.ValueCodec{Kind: uds.CodecScaled, Length: 2, Factor: 0.1, Offset: 0, Unit: "V"}},
				},
				Actuators: []Actuator{
					{ID: "fuel_pump", Name: "Fuel Pump", RoutineID: 0x0201, StopRoutineID: 0x0201},
					{ID: "cooling_fan", Name: "Cooling Fan", RoutineID: 0x0202, StopRoutineID: 0x0202},
					{ID: "throttle", Name: "Throttle Actuator", RoutineID: 0x0203},
				},
			},
			{
				ID:      "transmission",
				Name:    "Transmission Control Module",
				Address: 0x7E1,
				DataItems: []DataItem{
					{ID: "ecu_serial_number", Name: "ECU Serial Number", DID: uds.DIDECUSerialNumber,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 12}},
					{ID: "ecu_software_version", Name: "ECU Software Version", DID: uds.DIDSoftwareVersion,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 8}},
					{ID: "gear_position", Name: "Current Gear Position", DID: 0x01A0,
						Category: CategoryCurrentData, Codec: uds.ValueCodec{Kind: uds.CodecFixedUint, Length: 1}},
					{ID: "fluid_temperature", Name: "Transmission Fluid Temperature", DID: 0x01A1,
						Category: CategoryCurrentData,
						Codec:    uds.ValueCodec{Kind: uds.CodecScaled, Length: 1, Factor: 1, Offset: -40, Unit: "degC"}},
				},
			},
			{
				ID:      "abs",
				Name:    "Anti-lock Braking System",
				Address: 0x7E2,
				DataItems: []DataItem{
					{ID: "ecu_serial_number", Name: "ECU Serial Number", DID: uds.DIDECUSerialNumber,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 12}},
					{ID: "wheel_speed_fl", Name: "Wheel Speed Front Left", DID: 0x01B0,
						Category: CategoryCurrentData,
						Codec:    uds.ValueCodec{Kind: uds.CodecScaled, Length: 2, Factor: 0.01, Offset: 0, Unit: "km/h"}},
					{ID: "wheel_speed_fr", Name: "Wheel Speed Front Right", DID: 0x01B1,
						Category: CategoryCurrentData,
						Codec:    uds.ValueCodec{Kind: uds.CodecScaled, Length: 2, Factor: 0.01, Offset: 0, Unit: "km/h"}},
				},
				Actuators: []Actuator{
					{ID: "abs_pump", Name: "ABS Pump Motor", RoutineID: 0x0210, StopRoutineID: 0x0210},
				},
			},
			{
				ID:      "airbag",
				Name:    "Airbag Control Unit",
				Address: 0x7E3,
				DataItems: []DataItem{
					{ID: "ecu_serial_number", Name: "ECU Serial Number", DID: uds.DIDECUSerialNumber,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 12}},
					{ID: "crash_counter", Name: "Crash Event Counter", DID: 0x01C0,
						Category: CategoryCurrentData, Codec: uds.ValueCodec{Kind: uds.CodecFixedUint, Length: 1}},
				},
			},
			{
				ID:      "bcm",
				Name:    "Body Control Module",
				Address: 0x7E4,
				DataItems: []DataItem{
					{ID: "ecu_serial_number", Name: "ECU Serial Number", DID: uds.DIDECUSerialNumber,
						Category: CategoryIdentData, Codec: uds.ValueCodec{Kind: uds.CodecASCII, Length: 12}},
					{ID: "odometer", Name: "Odometer Reading", DID: 0x01D0,
						Category: CategoryCurrentData,
						Codec:    uds.ValueCodec{Kind: uds.CodecFixedUint, Length: 4}},
					{ID: "interior_light_mode", Name: "Interior Light Mode", DID: 0x01D1,
						Category: CategoryCurrentData, Writable: true,
						Codec: uds.ValueCodec{Kind: uds.CodecFixedUint, Length: 1}},
				},
				Actuators: []Actuator{
					{ID: "horn", Name: "Horn", RoutineID: 0x0220, StopRoutineID: 0x0220},
					{ID: "wiper", Name: "Windshield Wiper", RoutineID: 0x0221, StopRoutineID: 0x0221},
				},
			},
		},
	}

	// 組込み定義は静的データなのでbuildが失敗することはない。
	c, err := build(doc)
	if err != nil {
		panic("catalog: built-in definition invalid: " + err.Error())
	}
	return c
}
