package driver

import (
	"bytes"
	"net/netip"
	"sort"
)

// ATU entry states. Zero marks an unused entry.
const (
	ATUStateUnused  = 0x0
	ATUStateStatic  = 0xE
	ATUStateMaxAged = 0x7
)

const (
	atuCapacity = 8192
	maxFID      = 0xFFF
	tcamEntries = 256
)

// ATUEntry is one address translation unit entry. The opt tags name the
// options of the "atu addEntry" record builder.
type ATUEntry struct {
	MAC         MAC      `opt:"macAddr"`
	FID         uint32   `opt:"fid"`
	PortVec     []uint32 `opt:"portVec"`
	EntryState  uint32   `opt:"entryState"`
	TrunkMember bool     `opt:"trunkMember"`
}

type atuKey struct {
	mac MAC
	fid uint32
}

// AddATUEntry loads e into the ATU, replacing an entry with the same
// MAC and FID.
func (d *Dev) AddATUEntry(e ATUEntry) Status {
	if st := d.require(FeatureATU); st != OK {
		return st
	}
	if e.FID > maxFID || e.EntryState == ATUStateUnused || e.EntryState > 0xF {
		return BadParam
	}
	if _, st := d.portVecMask(e.PortVec); st != OK {
		return st
	}
	key := atuKey{mac: e.MAC, fid: e.FID}
	if _, ok := d.atu[key]; !ok && len(d.atu) >= atuCapacity {
		return Fail
	}

	vec := make([]uint32, d.Ports())
	copy(vec, e.PortVec)
	e.PortVec = vec
	d.atu[key] = e
	return OK
}

// DelATUEntry removes the entry for mac in fid.
func (d *Dev) DelATUEntry(mac MAC, fid uint32) Status {
	key := atuKey{mac: mac, fid: fid}
	if _, ok := d.atu[key]; !ok {
		return NoSuch
	}
	delete(d.atu, key)
	return OK
}

// FlushATU removes every entry.
func (d *Dev) FlushATU() Status {
	d.atu = make(map[atuKey]ATUEntry)
	return OK
}

// ATUCount returns the number of valid entries.
func (d *Dev) ATUCount() (uint32, Status) {
	return uint32(len(d.atu)), OK
}

// ATUEntries returns the entries ordered by FID then MAC.
func (d *Dev) ATUEntries() []ATUEntry {
	out := make([]ATUEntry, 0, len(d.atu))
	for _, e := range d.atu {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FID != out[j].FID {
			return out[i].FID < out[j].FID
		}
		return bytes.Compare(out[i].MAC[:], out[j].MAC[:]) < 0
	})
	return out
}

// VTU member tag values.
const (
	MemberEgressUnmodified = 0
	MemberEgressUntagged   = 1
	MemberEgressTagged     = 2
	MemberNotMember        = 3
)

// VTUEntry is one VLAN translation unit entry.
type VTUEntry struct {
	VID        uint32
	FID        uint32
	MemberTags []uint32
}

// AddVTUEntry creates VLAN vid. An existing VID is reported, not replaced.
func (d *Dev) AddVTUEntry(vid, fid uint32, memberTags []uint32) Status {
	if st := d.require(FeatureVTU); st != OK {
		return st
	}
	if vid == 0 || vid > 0xFFF || fid > maxFID || len(memberTags) > d.Ports() {
		return BadParam
	}
	for _, t := range memberTags {
		if t > MemberNotMember {
			return BadParam
		}
	}
	if _, ok := d.vtu[vid]; ok {
		return AlreadyExist
	}

	tags := make([]uint32, d.Ports())
	copy(tags, memberTags)
	d.vtu[vid] = VTUEntry{VID: vid, FID: fid, MemberTags: tags}
	return OK
}

// DelVTUEntry deletes VLAN vid.
func (d *Dev) DelVTUEntry(vid uint32) Status {
	if _, ok := d.vtu[vid]; !ok {
		return NoSuch
	}
	delete(d.vtu, vid)
	return OK
}

// VTUExists returns 1 when VLAN vid is present.
func (d *Dev) VTUExists(vid uint32) (uint32, Status) {
	if vid == 0 || vid > 0xFFF {
		return 0, BadParam
	}
	if _, ok := d.vtu[vid]; ok {
		return 1, OK
	}
	return 0, OK
}

// LookupVTU returns VLAN vid.
func (d *Dev) LookupVTU(vid uint32) (VTUEntry, bool) {
	e, ok := d.vtu[vid]
	return e, ok
}

// TCAMEntry holds the IP match fields programmed into one TCAM entry.
type TCAMEntry struct {
	SrcIP netip.Addr
	DstIP netip.Addr
}

// SetTCAMIPv4Match programs an IPv4 source/destination match.
func (d *Dev) SetTCAMIPv4Match(entry uint32, src, dst netip.Addr) Status {
	if st := d.require(FeatureTCAM); st != OK {
		return st
	}
	if entry >= tcamEntries || !src.Is4() || !dst.Is4() {
		return BadParam
	}
	d.tcam[entry] = TCAMEntry{SrcIP: src, DstIP: dst}
	return OK
}

// SetTCAMIPv6Match programs an IPv6 source match.
func (d *Dev) SetTCAMIPv6Match(entry uint32, src netip.Addr) Status {
	if st := d.require(FeatureTCAMv6); st != OK {
		return st
	}
	if entry >= tcamEntries || !src.Is6() {
		return BadParam
	}
	d.tcam[entry] = TCAMEntry{SrcIP: src}
	return OK
}

// LookupTCAM returns a programmed entry.
func (d *Dev) LookupTCAM(entry uint32) (TCAMEntry, bool) {
	e, ok := d.tcam[entry]
	return e, ok
}
