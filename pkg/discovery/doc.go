// Package discovery advertises and scans beacon identities over mDNS/DNS-SD.
//
// A beacon is published as an instance of the _ibeacon._udp service type. The
// instance carries no connectable service; all information lives in its TXT
// record:
//
//	U   region UUID (canonical string form)
//	MA  major value (0-65535)
//	MI  minor value (0-65535)
//	N   display name (optional)
//	MP  measured power, the RSSI at one meter in dBm (optional, default -59)
//	RS  observed signal in dBm (optional, set by simulated emitters)
//
// Instance names have the form <name>-<major>-<minor>, truncated to the DNS
// label limit.
//
// # Emitting
//
// Emitter drives an Advertiser through the IDLE and ADVERTISING states.
// MDNSAdvertiser is the zeroconf-backed Advertiser.
//
// # Scanning
//
// MDNSBrowser browses for beacon instances that share the monitored region
// UUID and reports them to a fence.Observer: a readings batch on every
// update, an enter when the monitored beacon first appears and an exit when
// its last instance disappears. Distances come from package ranging when the
// record carries an RS value; otherwise readings have unknown proximity.
package discovery
