package newtonm2

import (
	"encoding/binary"
	"testing"

	"navlink/internal/nav"
)

func corrImuBody(week uint32, secs, xa, ya, za, xv, yv, zv float64) []byte {
	b := make([]byte, corrImuDataLength)
	binary.LittleEndian.PutUint32(b[0:], week)
	putF64(b, 4, secs)
	putF64(b, 12, xa)
	putF64(b, 20, ya)
	putF64(b, 28, za)
	putF64(b, 36, xv)
	putF64(b, 44, yv)
	putF64(b, 52, zv)
	return b
}

func insPvaBody(week uint32, secs, lat, lon, hgt, vn, ve, vu, roll, pitch, azimuth float64, status uint32) []byte {
	b := make([]byte, insPvaLength)
	binary.LittleEndian.PutUint32(b[0:], week)
	putF64(b, 4, secs)
	putF64(b, 12, lat)
	putF64(b, 20, lon)
	putF64(b, 28, hgt)
	putF64(b, 36, vn)
	putF64(b, 44, ve)
	putF64(b, 52, vu)
	putF64(b, 60, roll)
	putF64(b, 68, pitch)
	putF64(b, 76, azimuth)
	binary.LittleEndian.PutUint32(b[84:], status)
	return b
}

func insCovBody(week uint32, secs float64, pos, att, vel [9]float64) []byte {
	b := make([]byte, insCovLength)
	binary.LittleEndian.PutUint32(b[0:], week)
	putF64(b, 4, secs)
	for i := 0; i < 9; i++ {
		putF64(b, 12+8*i, pos[i])
		putF64(b, 84+8*i, att[i])
		putF64(b, 156+8*i, vel[i])
	}
	return b
}

func rawImuXBody(week uint16, secs float64, zv, yvNeg, xv, za, yaNeg, xa int32) []byte {
	b := make([]byte, rawImuXLength)
	binary.LittleEndian.PutUint16(b[2:], week)
	putF64(b, 4, secs)
	binary.LittleEndian.PutUint32(b[16:], uint32(zv))
	binary.LittleEndian.PutUint32(b[20:], uint32(yvNeg))
	binary.LittleEndian.PutUint32(b[24:], uint32(xv))
	binary.LittleEndian.PutUint32(b[28:], uint32(za))
	binary.LittleEndian.PutUint32(b[32:], uint32(yaNeg))
	binary.LittleEndian.PutUint32(b[36:], uint32(xa))
	return b
}

func feedOne(t *testing.T, p *Parser, frame []byte) Message {
	t.Helper()
	p.SetBytes(frame)
	return p.Next()
}

func TestInsAggregationAcrossMessages(t *testing.T) {
	p := newTestParser(t, Config{})
	const week, secs = 2100, 600.0

	var pos, att, vel [9]float64
	pos[0] = 1.5
	att[1] = 4.0 // deg^2, row-major slot (0,1)
	vel[8] = 2.5
	if msg := feedOne(t, p, shortFrame(uint16(idInsCovS), week, 600000,
		insCovBody(week, secs, pos, att, vel))); msg.Kind != KindNone {
		t.Fatalf("covariance alone emitted kind %v", msg.Kind)
	}

	if msg := feedOne(t, p, shortFrame(uint16(idCorrImuDataS), week, 600000,
		corrImuBody(week, secs, 0.001, 0.002, 0.003, 0.01, 0.02, 0.03))); msg.Kind != KindNone {
		t.Fatalf("first inertial message of step emitted kind %v", msg.Kind)
	}

	msg := feedOne(t, p, shortFrame(uint16(idInsPvaS), week, 600000,
		insPvaBody(week, secs, 30.0, 114.0, 50.0, 1.0, 2.0, 3.0, 1.0, 2.0, 90.0, insSolutionGood)))
	if msg.Kind != KindIns {
		t.Fatalf("kind = %v, want ins", msg.Kind)
	}
	ins := msg.Ins

	approx(t, "time", ins.MeasurementTime, week*secondsPerWeek+secs, 1e-9)
	approx(t, "lat", ins.Position.Lat, 30.0, 1e-12)
	approx(t, "lon", ins.Position.Lon, 114.0, 1e-12)

	// Euler: roll and negated pitch in radians, azimuth 90 deg -> yaw 0.
	approx(t, "roll", ins.EulerAngles.X, 1.0*degToRad, 1e-12)
	approx(t, "pitch", ins.EulerAngles.Y, -2.0*degToRad, 1e-12)
	approx(t, "yaw", ins.EulerAngles.Z, 0.0, 1e-12)

	// Velocity reorders to east, north, up.
	approx(t, "vel.x", ins.LinearVelocity.X, 2.0, 1e-12)
	approx(t, "vel.y", ins.LinearVelocity.Y, 1.0, 1e-12)
	approx(t, "vel.z", ins.LinearVelocity.Z, 3.0, 1e-12)

	// Increments scale by the 200 Hz sampling rate, then RFU -> FLU.
	approx(t, "gyro.x", ins.AngularVelocity.X, 0.002*200, 1e-9)
	approx(t, "gyro.y", ins.AngularVelocity.Y, -0.001*200, 1e-9)
	approx(t, "gyro.z", ins.AngularVelocity.Z, 0.003*200, 1e-9)
	approx(t, "accel.x", ins.LinearAcceleration.X, 0.02*200, 1e-9)
	approx(t, "accel.y", ins.LinearAcceleration.Y, -0.01*200, 1e-9)
	approx(t, "accel.z", ins.LinearAcceleration.Z, 0.03*200, 1e-9)

	approx(t, "cov.pos[0]", ins.PositionCovariance[0], 1.5, 1e-12)
	// The attitude matrix transposes on the way in, deg^2 -> rad^2.
	approx(t, "cov.att[3]", ins.EulerAnglesCovariance[3], 4.0*degToRad*degToRad, 1e-15)
	approx(t, "cov.vel[8]", ins.LinearVelocityCovariance[8], 2.5, 1e-12)

	if ins.Quality != nav.InsGood {
		t.Errorf("quality = %v, want good", ins.Quality)
	}
}

func TestRawImuCalibratedAndMapped(t *testing.T) {
	p := newTestParser(t, Config{ImuType: ImuADIS16488})

	const count = 1 << 30
	msg := feedOne(t, p, longFrame(uint16(idRawImuX), 2100, 600000,
		rawImuXBody(2100, 600.0, 0, 0, count, 0, 0, count)))
	if msg.Kind != KindImu {
		t.Fatalf("kind = %v, want imu", msg.Kind)
	}
	imu := msg.Imu

	// 2^30 counts at 200/2^31 m/s per count, 200 Hz: 20000 m/s^2 on the
	// native x axis, which lands on -y after RFU -> FLU.
	wantAccel := float64(count) * 200.0 / 2147483648.0 * 200.0
	approx(t, "accel.x", imu.LinearAcceleration.X, 0, 1e-9)
	approx(t, "accel.y", imu.LinearAcceleration.Y, -wantAccel, 1e-6)

	wantGyro := float64(count) * 720.0 / 2147483648.0 * degToRad * 200.0
	approx(t, "gyro.y", imu.AngularVelocity.Y, -wantGyro, 1e-9)

	approx(t, "span", imu.MeasurementSpan, 1.0/200.0, 1e-12)
	approx(t, "time", imu.MeasurementTime, 2100*secondsPerWeek+600.0, 1e-9)

	if p.cal == nil {
		t.Fatal("calibration not initialized after raw inertial frame")
	}
}

func TestRawImuRotatedMounting(t *testing.T) {
	p := newTestParser(t, Config{ImuType: ImuADIS16488, FrameMapping: FrameMappingRotated})

	const count = 1 << 30
	msg := feedOne(t, p, longFrame(uint16(idRawImuX), 2100, 600000,
		rawImuXBody(2100, 600.0, 0, 0, count, 0, 0, 0)))
	if msg.Kind != KindImu {
		t.Fatalf("kind = %v, want imu", msg.Kind)
	}
	// Under the rotated mounting, native x lands on output x.
	wantAccel := float64(count) * 200.0 / 2147483648.0 * 200.0
	approx(t, "accel.x", msg.Imu.LinearAcceleration.X, wantAccel, 1e-6)
	approx(t, "accel.y", msg.Imu.LinearAcceleration.Y, 0, 1e-9)
}

func TestRawImuUnsupportedDeviceDropped(t *testing.T) {
	p := New(Config{ImuType: ImuUnknown}, nil)

	msg := feedOne(t, p, longFrame(uint16(idRawImuX), 2100, 600000,
		rawImuXBody(2100, 600.0, 1, 2, 3, 4, 5, 6)))
	if msg.Kind != KindNone {
		t.Fatalf("kind = %v, want none for unsupported device", msg.Kind)
	}
	if p.cal != nil {
		t.Fatal("calibration initialized for unsupported device")
	}
}

func TestRawImuTimingDriftStillEmits(t *testing.T) {
	p := newTestParser(t, Config{ImuType: ImuADIS16488})

	if msg := feedOne(t, p, longFrame(uint16(idRawImuX), 2100, 600000,
		rawImuXBody(2100, 600.0, 0, 0, 0, 0, 0, 0))); msg.Kind != KindImu {
		t.Fatalf("first sample kind = %v", msg.Kind)
	}
	// A gap far beyond one sample span is logged, never dropped.
	if msg := feedOne(t, p, longFrame(uint16(idRawImuX), 2100, 600100,
		rawImuXBody(2100, 600.1, 0, 0, 0, 0, 0, 0))); msg.Kind != KindImu {
		t.Fatalf("drifted sample kind = %v", msg.Kind)
	}
}

func TestInsPvaXStatus(t *testing.T) {
	p := newTestParser(t, Config{})

	body := make([]byte, insPvaXLength)
	binary.LittleEndian.PutUint32(body[0:], insSolutionGood)
	binary.LittleEndian.PutUint32(body[4:], posInsRTKFixed)

	msg := feedOne(t, p, longFrame(uint16(idInsPvaX), 2100, 600000, body))
	if msg.Kind != KindInsStat {
		t.Fatalf("kind = %v, want ins stat", msg.Kind)
	}
	approx(t, "unix time", msg.InsStat.UnixTime,
		2100*secondsPerWeek+600.0+gpsToUnixOffset, 1e-6)
	if msg.InsStat.InsStatus != insSolutionGood || msg.InsStat.PosType != posInsRTKFixed {
		t.Errorf("status = %d/%d, want %d/%d", msg.InsStat.InsStatus,
			msg.InsStat.PosType, insSolutionGood, posInsRTKFixed)
	}
}

func TestGPSEphemeris(t *testing.T) {
	p := newTestParser(t, Config{})

	b := make([]byte, gpsEphemerisLength)
	binary.LittleEndian.PutUint32(b[0:], 5)     // prn
	binary.LittleEndian.PutUint32(b[16:], 44)   // iode1
	binary.LittleEndian.PutUint32(b[24:], 2100) // week
	putF64(b, 32, 7200.0)                       // toe
	putF64(b, 40, 26559710.0)                   // semi-major axis
	putF64(b, 64, 0.01)                         // eccentricity
	binary.LittleEndian.PutUint32(b[160:], 44)  // iodc
	putF64(b, 164, 7200.0)                      // toc
	putF64(b, 172, 4.6e-9)                      // tgd
	putF64(b, 216, 4.0)                         // ura, m^2

	msg := feedOne(t, p, longFrame(uint16(idGPSEphem), 2100, 600000, b))
	if msg.Kind != KindGPSEphemeris {
		t.Fatalf("kind = %v, want gps ephemeris", msg.Kind)
	}
	k := msg.Ephemeris.Keppler
	if msg.Ephemeris.System != nav.SysGPS || k == nil || k.System != nav.SysGPS {
		t.Fatal("ephemeris system not gps")
	}
	if k.SatPRN != 5 || k.Week != 2100 || k.IODE != 44 || k.IODC != 44 {
		t.Errorf("prn/week/iode/iodc = %d/%d/%d/%d", k.SatPRN, k.Week, k.IODE, k.IODC)
	}
	// The wire carries the axis and variance; the record stores the roots.
	approx(t, "root a", k.RootA, 5153.6113, 1e-3)
	approx(t, "accuracy", k.Accuracy, 2.0, 1e-12)
	approx(t, "e", k.E, 0.01, 1e-12)
	approx(t, "tgd", k.Tgd, 4.6e-9, 1e-15)
}

func TestBDSEphemeris(t *testing.T) {
	p := newTestParser(t, Config{})

	b := make([]byte, bdsEphemerisLength)
	binary.LittleEndian.PutUint32(b[0:], 8)     // satellite id
	binary.LittleEndian.PutUint32(b[4:], 800)   // week
	putF64(b, 8, 2.0)                           // ura
	putF64(b, 20, 1.0e-9)                       // tgd1
	binary.LittleEndian.PutUint32(b[36:], 11)   // aodc
	binary.LittleEndian.PutUint32(b[40:], 3600) // toc
	binary.LittleEndian.PutUint32(b[68:], 10)   // aode
	binary.LittleEndian.PutUint32(b[72:], 7200) // toe
	putF64(b, 76, 5282.6)                       // root a

	msg := feedOne(t, p, longFrame(uint16(idBDSEphemeris), 2100, 600000, b))
	if msg.Kind != KindBDSEphemeris {
		t.Fatalf("kind = %v, want bds ephemeris", msg.Kind)
	}
	k := msg.Ephemeris.Keppler
	if msg.Ephemeris.System != nav.SysBDS || k.SatPRN != 8 || k.Week != 800 {
		t.Fatalf("system/prn/week = %v/%d/%d", msg.Ephemeris.System, k.SatPRN, k.Week)
	}
	if k.IODE != 10 || k.IODC != 11 {
		t.Errorf("iode/iodc = %d/%d, want 10/11", k.IODE, k.IODC)
	}
	approx(t, "root a", k.RootA, 5282.6, 1e-9)
	approx(t, "toe", k.Toe, 7200.0, 1e-12)
	approx(t, "toc", k.Toc, 3600.0, 1e-12)
	approx(t, "accuracy", k.Accuracy, 2.0, 1e-12)
	approx(t, "tgd", k.Tgd, 1.0e-9, 1e-15)
}

func TestGloEphemeris(t *testing.T) {
	p := newTestParser(t, Config{})

	build := func(health uint32) []byte {
		b := make([]byte, gloEphemerisLength)
		binary.LittleEndian.PutUint16(b[0:], 45)      // slot + 37
		binary.LittleEndian.PutUint16(b[2:], 12)      // frequency + 7
		binary.LittleEndian.PutUint16(b[6:], 2100)    // week
		binary.LittleEndian.PutUint32(b[8:], 600000)  // ms into week
		binary.LittleEndian.PutUint32(b[24:], health) //
		putF64(b, 28, 1.2e7)                          // pos x
		putF64(b, 100, 1.0e-6)                        // tau n
		putF64(b, 116, 2.0e-12)                       // gamma
		binary.LittleEndian.PutUint32(b[124:], 300)   // tk
		binary.LittleEndian.PutUint32(b[136:], 30)    // age
		return b
	}

	msg := feedOne(t, p, longFrame(uint16(idGloEphemeris), 2100, 600000, build(3)))
	if msg.Kind != KindGloEphemeris {
		t.Fatalf("kind = %v, want glo ephemeris", msg.Kind)
	}
	g := msg.Ephemeris.Glonass
	if msg.Ephemeris.System != nav.SysGLO || g == nil {
		t.Fatal("ephemeris system not glonass")
	}
	if g.SlotPRN != 8 || g.FrequencyNo != 5 || g.Week != 2100 {
		t.Errorf("slot/freq/week = %d/%d/%d, want 8/5/2100", g.SlotPRN, g.FrequencyNo, g.Week)
	}
	approx(t, "toe", g.Toe, 600.0, 1e-9)
	approx(t, "clock offset", g.ClockOffset, -1.0e-6, 1e-15)
	approx(t, "clock drift", g.ClockDrift, 2.0e-12, 1e-20)
	approx(t, "pos.x", g.Position.X, 1.2e7, 1e-3)
	approx(t, "tk", g.Tk, 300, 1e-9)
	approx(t, "age", g.InfoAge, 30, 1e-9)
	if g.Health != 0 {
		t.Errorf("health = %d, want 0 (usable) for code 3", g.Health)
	}

	msg = feedOne(t, p, longFrame(uint16(idGloEphemeris), 2100, 600000, build(4)))
	if msg.Ephemeris.Glonass.Health != 1 {
		t.Errorf("health = %d, want 1 (bad) for code 4", msg.Ephemeris.Glonass.Health)
	}
}

func TestHeading(t *testing.T) {
	p := newTestParser(t, Config{})

	b := make([]byte, headingLength)
	binary.LittleEndian.PutUint32(b[0:], solComputed)
	binary.LittleEndian.PutUint32(b[4:], posNarrowInt)
	putF32(b, 8, 1.2)    // baseline m
	putF32(b, 12, 275.5) // heading deg
	putF32(b, 16, -1.25) // pitch deg
	putF32(b, 24, 0.1)
	putF32(b, 28, 0.2)
	b[36] = 14
	b[37] = 11

	msg := feedOne(t, p, longFrame(uint16(idHeading), 2100, 600000, b))
	if msg.Kind != KindHeading {
		t.Fatalf("kind = %v, want heading", msg.Kind)
	}
	h := msg.Heading
	approx(t, "baseline", h.BaselineLength, 1.2, 1e-6)
	approx(t, "heading", h.Heading, 275.5, 1e-4)
	approx(t, "pitch", h.Pitch, -1.25, 1e-6)
	approx(t, "heading std", h.HeadingStdDev, 0.1, 1e-6)
	if h.NumSatsTracked != 14 || h.NumSatsInSolution != 11 {
		t.Errorf("sats = %d/%d, want 14/11", h.NumSatsTracked, h.NumSatsInSolution)
	}
	if h.SolutionStatus != solComputed || h.PositionType != posNarrowInt {
		t.Errorf("status/type = %d/%d", h.SolutionStatus, h.PositionType)
	}
}

func rangeChannel(prn, glofreq uint16, psr, adr, dop, cn0, lockt float64, stat uint32) []byte {
	ch := make([]byte, 44)
	binary.LittleEndian.PutUint16(ch[0:], prn)
	binary.LittleEndian.PutUint16(ch[2:], glofreq)
	putF64(ch, 4, psr)
	putF64(ch, 16, adr)
	putF32(ch, 28, dop)
	putF32(ch, 32, cn0)
	putF32(ch, 36, lockt)
	binary.LittleEndian.PutUint32(ch[40:], stat)
	return ch
}

func trackStat(sys, sigtype uint32, phaseLock, codeLock bool) uint32 {
	stat := sys<<16 | sigtype<<21
	if phaseLock {
		stat |= 1 << 10
	}
	if codeLock {
		stat |= 1 << 12
	}
	return stat
}

func TestRangeObservationEpoch(t *testing.T) {
	p := newTestParser(t, Config{})

	channels := [][]byte{
		// GPS prn 12: L1 C/A and L2 P(Y).
		rangeChannel(12, 0, 2.1e7, -1.2e8, 800.0, 45.0, 120.0, trackStat(0, 0, true, true)),
		rangeChannel(12, 0, 2.1e7, -9.5e7, 650.0, 38.0, 120.0, trackStat(0, 5, true, true)),
		// GLONASS slot 8 (wire prn 45): G1 C/A.
		rangeChannel(45, 9, 2.3e7, -1.1e8, -300.0, 41.0, 60.0, trackStat(1, 0, true, true)),
	}

	body := make([]byte, 4, 4+len(channels)*44)
	binary.LittleEndian.PutUint32(body, uint32(len(channels)))
	for _, ch := range channels {
		body = append(body, ch...)
	}

	msg := feedOne(t, p, longFrame(uint16(idRange), 2100, 600000, body))
	if msg.Kind != KindObservation {
		t.Fatalf("kind = %v, want observation", msg.Kind)
	}
	ep := msg.Observation
	if ep.GnssWeek != 2100 {
		t.Errorf("week = %d, want 2100", ep.GnssWeek)
	}
	approx(t, "second", ep.GnssSecond, 600.0, 1e-9)
	if len(ep.Satellites) != 2 {
		t.Fatalf("satellites = %d, want 2", len(ep.Satellites))
	}

	gps := ep.Satellites[0]
	if gps.System != nav.SysGPS || gps.PRN != 12 || len(gps.Bands) != 2 {
		t.Fatalf("gps sat = %v/%d with %d bands", gps.System, gps.PRN, len(gps.Bands))
	}
	l1 := gps.Bands[0]
	if l1.Band != nav.BandGPSL1 || l1.PseudoType != nav.PseudoCoarseCode {
		t.Errorf("band 0 = %v/%v, want L1 coarse", l1.Band, l1.PseudoType)
	}
	approx(t, "psr", l1.PseudoRange, 2.1e7, 1e-3)
	// Accumulated Doppler range negates into carrier phase.
	approx(t, "carrier", l1.CarrierPhase, 1.2e8, 1e-3)
	approx(t, "doppler", l1.Doppler, 800.0, 1e-3)
	approx(t, "snr", l1.SNR, 45.0, 1e-6)
	approx(t, "lock", l1.LockTime, 120.0, 1e-6)
	if gps.Bands[1].Band != nav.BandGPSL2 || gps.Bands[1].PseudoType != nav.PseudoPrecisionCode {
		t.Errorf("band 1 = %v/%v, want L2 precision", gps.Bands[1].Band, gps.Bands[1].PseudoType)
	}

	glo := ep.Satellites[1]
	if glo.System != nav.SysGLO || glo.PRN != 8 {
		t.Errorf("glo sat = %v/%d, want glo/8", glo.System, glo.PRN)
	}
	if len(glo.Bands) != 1 || glo.Bands[0].Band != nav.BandGLOG1 {
		t.Errorf("glo bands = %v", glo.Bands)
	}
}
