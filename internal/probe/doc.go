// Package probe drives the per-file probe pipeline.
//
// A Prober opens a container through a demuxer, binds a decoder to every
// stream it can, and walks the packets strictly in order. Each packet is
// stamped through the statistics model (Container.RecordPacket) before it is
// handed to the decode Machine, which runs the kind-specific strategy for the
// stream and stamps every produced Frame through Container.RecordFrame.
//
// Video provenance is attached when the decoder allocates a picture buffer,
// not when the decode call returns, so pictures a decoder holds back are still
// attributed to the packet that started them. The Machine keeps that
// association in an explicit handle map that is emptied on release and on
// Close.
//
// Results flow to a Sink in the order TAGS, PACKET/FRAME, STREAM, FILE. The
// Runner probes many inputs, optionally in parallel, while committing their
// output in input order.
package probe
