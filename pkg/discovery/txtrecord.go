package discovery

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/ranging"
	"github.com/sigobj/beaconfence/pkg/version"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeBeaconTXT creates TXT records for a beacon.
func EncodeBeaconTXT(info *BeaconInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyVersion] = version.Current
	txt[TXTKeyRegion] = info.Identity.RegionID().String()
	txt[TXTKeyMajor] = strconv.FormatUint(uint64(info.Identity.Major()), 10)
	txt[TXTKeyMinor] = strconv.FormatUint(uint64(info.Identity.Minor()), 10)

	// Optional fields
	if info.Identity.Name() != "" {
		txt[TXTKeyName] = info.Identity.Name()
	}
	if info.MeasuredPower != 0 {
		txt[TXTKeyMeasuredPower] = strconv.Itoa(info.MeasuredPower)
	}
	if info.Signal != 0 {
		txt[TXTKeySignal] = strconv.Itoa(info.Signal)
	}

	return txt
}

// DecodeBeaconTXT parses TXT records of a beacon.
// Records of an incompatible major version are rejected.
func DecodeBeaconTXT(txt TXTRecordMap) (*BeaconInfo, error) {
	if v, ok := txt[TXTKeyVersion]; ok {
		if err := version.Check(v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
		}
	}

	region, ok := txt[TXTKeyRegion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyRegion)
	}
	majorStr, ok := txt[TXTKeyMajor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyMajor)
	}
	minorStr, ok := txt[TXTKeyMinor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyMinor)
	}

	major, err := strconv.ParseUint(majorStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid major %q", ErrInvalidTXTRecord, majorStr)
	}
	minor, err := strconv.ParseUint(minorStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid minor %q", ErrInvalidTXTRecord, minorStr)
	}

	id, err := fence.ParseIdentity(txt[TXTKeyName], region, int(major), int(minor))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}

	info := &BeaconInfo{
		Identity:      id,
		MeasuredPower: ranging.DefaultMeasuredPower,
	}

	if mp, ok := txt[TXTKeyMeasuredPower]; ok {
		info.MeasuredPower, err = parseSignal(mp)
		if err != nil {
			return nil, err
		}
	}
	if rs, ok := txt[TXTKeySignal]; ok {
		info.Signal, err = parseSignal(rs)
		if err != nil {
			return nil, err
		}
	}

	return info, nil
}

// parseSignal parses a dBm value and checks its range.
func parseSignal(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTXTRecord, s)
	}
	if err := ValidateSignal(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateSignal checks that a dBm value is within MinSignal..MaxSignal.
func ValidateSignal(v int) error {
	if v < MinSignal || v > MaxSignal {
		return fmt.Errorf("%w: %d", ErrInvalidSignal, v)
	}
	return nil
}

// InstanceName builds the mDNS instance name "<name>-<major>-<minor>".
// An empty name uses "beacon". The result is truncated on a rune boundary to
// at most MaxInstanceNameLen bytes.
func InstanceName(id fence.Identity) string {
	name := id.Name()
	if name == "" {
		name = "beacon"
	}
	instance := fmt.Sprintf("%s-%d-%d", name, id.Major(), id.Minor())
	if len(instance) > MaxInstanceNameLen {
		cut := MaxInstanceNameLen
		for cut > 0 && !utf8.RuneStart(instance[cut]) {
			cut--
		}
		instance = instance[:cut]
	}
	return instance
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: instance name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
