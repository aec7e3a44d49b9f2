package newtonm2

import (
	"math"

	"go.uber.org/zap"

	"navlink/internal/nav"
	"navlink/internal/rawobs"
)

// azimuthToYaw converts a compass azimuth (degrees clockwise from true
// north) to yaw (radians counterclockwise from east).
func azimuthToYaw(azimuthDeg float64) float64 {
	return (90.0 - azimuthDeg) * degToRad
}

func (p *Parser) handleBestGnssPos(h header, body []byte) Message {
	m := decodeBestPos(body)

	p.bestPose = nav.BestPose{
		MeasurementTime: gpsSeconds(h),

		SolutionStatus: m.SolutionStatus,
		PositionType:   m.PositionType,

		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		HeightMSL:  m.HeightMSL,
		Undulation: m.Undulation,
		DatumID:    m.DatumID,

		LatitudeStdDev:  m.LatitudeStd,
		LongitudeStdDev: m.LongitudeStd,
		HeightStdDev:    m.HeightStd,

		BaseStationID:   m.BaseStationID,
		DifferentialAge: m.DiffAge,
		SolutionAge:     m.SolutionAge,

		NumSatsTracked:    int(m.NumSatsTracked),
		NumSatsInSolution: int(m.NumSatsInSol),
		NumSatsL1:         int(m.NumSatsL1),
		NumSatsMulti:      int(m.NumSatsMulti),

		ExtendedSolutionStatus: m.ExtSolutionStatus,
		GalileoBeidouUsedMask:  m.GalBdsUsedMask,
		GPSGlonassUsedMask:     m.GPSGloUsedMask,
	}

	p.bestPoseOut = p.bestPose
	return Message{Kind: KindBestGnssPos, BestPose: &p.bestPoseOut}
}

func (p *Parser) handleBestPos(h header, body []byte) Message {
	m := decodeBestPos(body)

	if int64(m.SolutionStatus) != p.lastSolutionStatus {
		p.log.Info("gnss solution status changed",
			zap.Uint32("status", m.SolutionStatus))
		p.lastSolutionStatus = int64(m.SolutionStatus)
	}
	if m.SolutionStatus == solComputed && int64(m.PositionType) != p.lastPositionType {
		p.log.Info("gnss position type changed",
			zap.Uint32("position_type", m.PositionType))
		p.lastPositionType = int64(m.PositionType)
	}
	if m.DatumID != datumWGS84 && p.warnDatum.Allow() {
		p.log.Warn("position datum is not wgs84", zap.Uint32("datum_id", m.DatumID))
	}

	p.gnss.Position = nav.PointLLH{
		Lon:    m.Longitude,
		Lat:    m.Latitude,
		Height: m.HeightMSL + m.Undulation,
	}
	p.gnss.PositionStdDev = nav.Vector3{
		X: m.LongitudeStd,
		Y: m.LatitudeStd,
		Z: m.HeightStd,
	}
	p.gnss.NumSats = int(m.NumSatsInSol)
	p.gnss.SolutionStatus = m.SolutionStatus
	p.gnss.Quality = classifyFix(m.SolutionStatus, m.PositionType)
	if m.SolutionStatus == solComputed {
		p.gnss.PositionType = m.PositionType
	} else {
		p.gnss.PositionType = posNone
	}

	return p.finishGnssStep(gpsSeconds(h))
}

func (p *Parser) handleBestVel(h header, body []byte) Message {
	m := decodeBestVel(body)

	if m.SolutionStatus == solComputed && int64(m.VelocityType) != p.lastVelocityType {
		p.log.Info("gnss velocity type changed",
			zap.Uint32("velocity_type", m.VelocityType))
		p.lastVelocityType = int64(m.VelocityType)
	}
	if !p.haveVelLatency || p.gnss.VelocityLatency != m.Latency {
		p.log.Info("gnss velocity latency changed", zap.Float64("latency", m.Latency))
		p.gnss.VelocityLatency = m.Latency
		p.haveVelLatency = true
	}

	yaw := azimuthToYaw(m.TrackOverGround)
	p.gnss.LinearVelocity = nav.Vector3{
		X: m.HorizontalSpeed * math.Cos(yaw),
		Y: m.HorizontalSpeed * math.Sin(yaw),
		Z: m.VerticalSpeed,
	}

	return p.finishGnssStep(gpsSeconds(h))
}

// finishGnssStep stamps the fused record and emits it once a second message
// confirms the same measurement time.
func (p *Parser) finishGnssStep(ts float64) Message {
	p.gnss.MeasurementTime = ts
	if p.gnssStep.boundary(ts) {
		return Message{}
	}
	p.gnssOut = p.gnss
	return Message{Kind: KindGnss, Gnss: &p.gnssOut}
}

func (p *Parser) handleCorrImuData(h header, body []byte) Message {
	m := decodeCorrImuData(body)

	cal, ok := p.ensureCalibration()
	if !ok {
		return Message{}
	}

	// The body carries per-sample increments; multiplying by the sampling
	// rate recovers rates.
	p.ins.AngularVelocity = rfuToFLU(
		m.XAngChange*cal.RateHz,
		m.YAngChange*cal.RateHz,
		m.ZAngChange*cal.RateHz,
	)
	p.ins.LinearAcceleration = rfuToFLU(
		m.XVelChange*cal.RateHz,
		m.YVelChange*cal.RateHz,
		m.ZVelChange*cal.RateHz,
	)

	ts := float64(m.GPSWeek)*secondsPerWeek + m.GPSSeconds
	return p.finishInsStep(ts)
}

// covTranspose maps a row-major 3x3 index to its transpose, matching the
// column-major attitude covariance the receiver reports.
var covTranspose = [9]int{0, 3, 6, 1, 4, 7, 2, 5, 8}

func (p *Parser) handleInsCov(h header, body []byte) Message {
	m := decodeInsCov(body)

	for i := 0; i < 9; i++ {
		p.ins.PositionCovariance[i] = m.Position[i]
		p.ins.EulerAnglesCovariance[covTranspose[i]] = m.Attitude[i] * degToRad * degToRad
		p.ins.LinearVelocityCovariance[i] = m.Velocity[i]
	}
	// Covariance alone never completes a step.
	return Message{}
}

func (p *Parser) handleInsPva(h header, body []byte) Message {
	m := decodeInsPva(body)

	if int64(m.Status) != p.lastInsStatus {
		p.log.Info("ins status changed", zap.Uint32("status", m.Status))
		p.lastInsStatus = int64(m.Status)
	}

	p.ins.Position = nav.PointLLH{
		Lon:    m.Longitude,
		Lat:    m.Latitude,
		Height: m.Height,
	}
	p.ins.EulerAngles = nav.Vector3{
		X: m.Roll * degToRad,
		Y: -m.Pitch * degToRad,
		Z: azimuthToYaw(m.Azimuth),
	}
	p.ins.LinearVelocity = nav.Vector3{
		X: m.EastVelocity,
		Y: m.NorthVelocity,
		Z: m.UpVelocity,
	}
	p.ins.Quality = classifyIns(m.Status)

	ts := float64(m.GPSWeek)*secondsPerWeek + m.GPSSeconds
	return p.finishInsStep(ts)
}

func (p *Parser) finishInsStep(ts float64) Message {
	p.ins.MeasurementTime = ts
	if p.insStep.boundary(ts) {
		return Message{}
	}
	p.insOut = p.ins
	return Message{Kind: KindIns, Ins: &p.insOut}
}

func (p *Parser) handleInsPvaX(h header, body []byte) Message {
	m := decodeInsPvaX(body)

	p.insStat = nav.InsStat{
		UnixTime:  gpsSeconds(h) + gpsToUnixOffset,
		InsStatus: m.InsStatus,
		PosType:   m.PosType,
	}
	p.insStatOut = p.insStat
	return Message{Kind: KindInsStat, InsStat: &p.insStatOut}
}

func (p *Parser) handleRawImuX(h header, body []byte) Message {
	m := decodeRawImuX(body)
	if m.ImuError != 0 {
		p.log.Warn("imu error flagged", zap.Uint8("error", m.ImuError),
			zap.Uint32("status", m.ImuStatus))
	}
	return p.handleRawInertial(m)
}

func (p *Parser) handleRawImu(h header, body []byte) Message {
	return p.handleRawInertial(decodeRawImu(body))
}

func (p *Parser) handleRawInertial(m rawImuLog) Message {
	cal, ok := p.ensureCalibration()
	if !ok {
		return Message{}
	}

	ts := float64(m.GPSWeek)*secondsPerWeek + m.GPSSeconds
	if p.imuPrevTime > 0 {
		if drift := ts - p.imuPrevTime - cal.Span; math.Abs(drift) > 1e-4 && p.warnTiming.Allow() {
			p.log.Warn("imu sample interval drift",
				zap.Float64("expected", cal.Span),
				zap.Float64("actual", ts-p.imuPrevTime))
		}
	}
	p.imuPrevTime = ts

	accel, ok := mapAxes(p.frameMapping,
		float64(m.XVelChange)*cal.AccelScale,
		float64(m.YVelChangeNeg)*cal.AccelScale,
		float64(m.ZVelChange)*cal.AccelScale)
	if !ok {
		if p.warnMapping.Allow() {
			p.log.Error("unrecognized frame mapping", zap.Int("mapping", p.frameMapping))
		}
		return Message{}
	}
	gyro, _ := mapAxes(p.frameMapping,
		float64(m.XAngChange)*cal.GyroScale,
		float64(m.YAngChangeNeg)*cal.GyroScale,
		float64(m.ZAngChange)*cal.GyroScale)

	p.imu.MeasurementTime = ts
	p.imu.MeasurementSpan = cal.Span
	p.imu.LinearAcceleration = accel
	p.imu.AngularVelocity = gyro

	p.imuOut = p.imu
	return Message{Kind: KindImu, Imu: &p.imuOut}
}

// ensureCalibration performs the one-time uninitialized->initialized
// calibration transition. Unsupported devices stay uninitialized and the
// frame is dropped.
func (p *Parser) ensureCalibration() (imuCal, bool) {
	if p.cal != nil {
		return *p.cal, true
	}
	cal, ok := newImuCal(p.imuType)
	if !ok {
		if p.warnImuType.Allow() {
			p.log.Error("unsupported imu device type",
				zap.String("imu_type", p.imuType.String()))
		}
		return imuCal{}, false
	}
	p.log.Info("imu calibration initialized",
		zap.String("imu_type", p.imuType.String()),
		zap.Float64("sampling_rate_hz", cal.RateHz))
	p.cal = &cal
	return cal, true
}

func (p *Parser) handleGPSEphemeris(h header, body []byte) Message {
	m := decodeGPSEphemeris(body)

	p.eph = nav.Ephemeris{
		System: nav.SysGPS,
		Keppler: &nav.KepplerOrbit{
			System: nav.SysGPS,
			SatPRN: int(m.PRN),
			Week:   int(m.Week),

			Af0:  m.Af0,
			Af1:  m.Af1,
			Af2:  m.Af2,
			IODE: int(m.IODE1),
			IODC: int(m.IODC),

			DeltaN:   m.DeltaN,
			M0:       m.M0,
			E:        m.Ecc,
			RootA:    math.Sqrt(m.A),
			Toe:      m.Toe,
			Toc:      m.Toc,
			Cic:      m.Cic,
			Crc:      m.Crc,
			Cis:      m.Cis,
			Crs:      m.Crs,
			Cuc:      m.Cuc,
			Cus:      m.Cus,
			Omega0:   m.Omega0,
			Omega:    m.Omega,
			I0:       m.I0,
			OmegaDot: m.OmegaD,
			IDot:     m.IDot,

			Accuracy: math.Sqrt(m.URA),
			Health:   m.Health,
			Tgd:      m.Tgd,
		},
	}

	p.ephOut = p.eph
	return Message{Kind: KindGPSEphemeris, Ephemeris: &p.ephOut}
}

func (p *Parser) handleBDSEphemeris(h header, body []byte) Message {
	m := decodeBDSEphemeris(body)

	p.eph = nav.Ephemeris{
		System: nav.SysBDS,
		Keppler: &nav.KepplerOrbit{
			System: nav.SysBDS,
			SatPRN: int(m.SatelliteID),
			Week:   int(m.Week),

			Af0:  m.A0,
			Af1:  m.A1,
			Af2:  m.A2,
			IODE: int(m.AODE),
			IODC: int(m.AODC),

			DeltaN:   m.DeltaN,
			M0:       m.M0,
			E:        m.Ecc,
			RootA:    m.RootA,
			Toe:      float64(m.Toe),
			Toc:      float64(m.Toc),
			Cic:      m.Cic,
			Crc:      m.Crc,
			Cis:      m.Cis,
			Crs:      m.Crs,
			Cuc:      m.Cuc,
			Cus:      m.Cus,
			Omega0:   m.Omega0,
			Omega:    m.Omega,
			I0:       m.IncAngle,
			OmegaDot: m.RRA,
			IDot:     m.IDot,

			Accuracy: m.URA,
			Health:   m.Health,
			Tgd:      m.Tgd1,
		},
	}

	p.ephOut = p.eph
	return Message{Kind: KindBDSEphemeris, Ephemeris: &p.ephOut}
}

func (p *Parser) handleGloEphemeris(h header, body []byte) Message {
	m := decodeGloEphemeris(body)

	health := 1
	if m.Health <= 3 {
		health = 0
	}
	p.eph = nav.Ephemeris{
		System: nav.SysGLO,
		Glonass: &nav.GlonassOrbit{
			SlotPRN:     int(m.Sloto) - 37,
			FrequencyNo: int(m.Freqo) - 7,
			Week:        int(m.EWeek),
			WeekSecond:  float64(m.ETime) * 1e-3,
			Toe:         float64(m.ETime) * 1e-3,
			Tk:          float64(m.Tk),

			ClockOffset: -m.TauN,
			ClockDrift:  m.Gamma,
			Health:      health,

			Position:   nav.Vector3{X: m.PosX, Y: m.PosY, Z: m.PosZ},
			Velocity:   nav.Vector3{X: m.VelX, Y: m.VelY, Z: m.VelZ},
			Accelerate: nav.Vector3{X: m.AccX, Y: m.AccY, Z: m.AccZ},

			InfoAge: float64(m.Age),
		},
	}

	p.ephOut = p.eph
	return Message{Kind: KindGloEphemeris, Ephemeris: &p.ephOut}
}

func (p *Parser) handleHeading(h header, body []byte) Message {
	m := decodeHeading(body)

	p.heading = nav.Heading{
		MeasurementTime: gpsSeconds(h),

		SolutionStatus: m.SolutionStatus,
		PositionType:   m.PositionType,

		BaselineLength: m.Length,
		Heading:        m.Heading,
		Pitch:          m.Pitch,
		Reserved:       m.Reserved,
		HeadingStdDev:  m.HeadingStd,
		PitchStdDev:    m.PitchStd,

		StationID: m.StationID,

		NumSatsTracked:    int(m.NumSatsTracked),
		NumSatsInSolution: int(m.NumSatsInSol),
		NumSatsObs:        int(m.NumSatsEle),
		NumSatsMulti:      int(m.NumSatsL2),

		SolutionSource:         m.SolutionSource,
		ExtendedSolutionStatus: m.ExtSolutionStatus,
		GalileoBeidouSigMask:   m.GalBdsSigMask,
		GPSGlonassSigMask:      m.GPSGloSigMask,
	}

	p.headingOut = p.heading
	return Message{Kind: KindHeading, Heading: &p.headingOut}
}

// handleRange feeds the whole validated frame through the observation
// sub-decoder, which owns its own framing.
func (p *Parser) handleRange(h header, frame []byte) Message {
	for _, b := range frame {
		if p.obsDecoder.Input(b) != rawobs.ResultEpoch {
			continue
		}
		ep := p.obsDecoder.Epoch()
		if len(ep.Satellites) == 0 {
			p.log.Warn("observation epoch has no satellites")
		}
		p.emitObservation(ep)
		p.obsOut = p.obs
		return Message{Kind: KindObservation, Observation: &p.obsOut}
	}
	return Message{}
}

// bandTable maps a constellation and band slot to the output taxonomy.
var bandTable = map[nav.GnssSystem][3]nav.BandID{
	nav.SysGPS: {nav.BandGPSL1, nav.BandGPSL2, nav.BandGPSL5},
	nav.SysBDS: {nav.BandBDSB1, nav.BandBDSB2, nav.BandBDSB3},
	nav.SysGLO: {nav.BandGLOG1, nav.BandGLOG2, nav.BandUnknown},
}

func observationSystem(sys rawobs.System) nav.GnssSystem {
	switch sys {
	case rawobs.SystemGPS:
		return nav.SysGPS
	case rawobs.SystemBeiDou:
		return nav.SysBDS
	case rawobs.SystemGLONASS:
		return nav.SysGLO
	default:
		return nav.SysUnknown
	}
}

func pseudoType(code rawobs.Code) nav.PseudoType {
	switch code {
	case rawobs.CodeCA:
		return nav.PseudoCoarseCode
	case rawobs.CodeP:
		return nav.PseudoPrecisionCode
	default:
		return nav.PseudoUnknown
	}
}

// emitObservation maps a sub-decoder epoch into the output record. Fresh
// slices are allocated so a snapshot of p.obs stays stable.
func (p *Parser) emitObservation(ep *rawobs.Epoch) {
	sats := make([]nav.SatelliteObservation, 0, len(ep.Satellites))
	for _, sat := range ep.Satellites {
		sys := observationSystem(sat.System)
		if sys == nav.SysUnknown {
			continue
		}
		bands := make([]nav.BandObservation, 0, len(sat.Obs))
		for _, obs := range sat.Obs {
			band := nav.BandUnknown
			if obs.FreqIndex >= 0 && obs.FreqIndex < 3 {
				band = bandTable[sys][obs.FreqIndex]
			}
			if band == nav.BandUnknown {
				break
			}
			bands = append(bands, nav.BandObservation{
				Band:         band,
				PseudoType:   pseudoType(obs.Code),
				PseudoRange:  obs.Pseudorange,
				CarrierPhase: obs.CarrierPhase,
				LockTime:     obs.LockTime,
				Doppler:      obs.Doppler,
				SNR:          obs.CN0,
			})
		}
		sats = append(sats, nav.SatelliteObservation{
			System: sys,
			PRN:    sat.PRN,
			Bands:  bands,
		})
	}
	p.obs = nav.EpochObservation{
		ReceiverID: 0,
		GnssWeek:   ep.GPSWeek,
		GnssSecond: ep.Seconds,
		Satellites: sats,
	}
}
