package sim

// Closed-form steady-state predictions for the simulated system, used to
// sanity-check simulation output and as the baseline in sweep tables.
//
// With λ the total arrival rate, μ the service rate and f the fastpass fraction:
//
//	ρ   = λ/μ, ρp = fλ/μ
//	W0  = min(ρ, 1)/μ                (mean residual service seen by an arrival)
//	Wqp = W0 / (1 − ρp)              (priority queueing delay)
//	Wqr = W0 / ((1 − ρp)(1 − ρ))     (regular queueing delay)
//	T   = Wq + 1/μ                   (residence time)

// MM1Residence returns the mean residence time 1/(μ−λ) of a single-class M/M/1
// queue. ok is false when λ >= μ.
func MM1Residence(arrivalRate, serviceRate float64) (float64, bool) {
	if arrivalRate >= serviceRate || serviceRate <= 0 {
		return 0, false
	}
	return 1 / (serviceRate - arrivalRate), true
}

// PriorityResidence returns the mean residence time of class c in a
// non-preemptive two-class M/M/1 priority queue. ok is false when the class
// receives no traffic or its queue has no steady state. When λ >= μ the
// server never idles, so the priority class still has a steady state as long
// as ρp < 1 and sees a full residual service of 1/μ.
func PriorityResidence(c Class, arrivalRate, fraction, serviceRate float64) (float64, bool) {
	if arrivalRate <= 0 || serviceRate <= 0 {
		return 0, false
	}
	rho := arrivalRate / serviceRate
	rhoP := fraction * rho
	w0 := min(rho, 1) / serviceRate

	switch c {
	case ClassPriority:
		if fraction <= 0 || rhoP >= 1 {
			return 0, false
		}
		return w0/(1-rhoP) + 1/serviceRate, true
	case ClassRegular:
		if fraction >= 1 || rho >= 1 {
			return 0, false
		}
		return w0/((1-rhoP)*(1-rho)) + 1/serviceRate, true
	default:
		return 0, false
	}
}

// Prediction holds analytic residence times for both classes of a Config.
type Prediction struct {
	Priority, Regular     float64
	PriorityOK, RegularOK bool
}

// Predict evaluates PriorityResidence for both classes of cfg.
func Predict(cfg Config) Prediction {
	var p Prediction
	p.Priority, p.PriorityOK = PriorityResidence(ClassPriority, cfg.ArrivalRate, cfg.FastpassFraction, cfg.ServiceRate)
	p.Regular, p.RegularOK = PriorityResidence(ClassRegular, cfg.ArrivalRate, cfg.FastpassFraction, cfg.ServiceRate)
	return p
}
