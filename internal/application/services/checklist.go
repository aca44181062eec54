package services

// Disclaimer is appended exactly once to every guidance text shown to users.
const Disclaimer = "\n\n⚠️ These are AI selected DIY suggestions from a predefined checklist. " +
	"Please verify compatibility with your specific vehicle model " +
	"and consult a professional if uncertain."

// ChecklistPool is the fixed candidate pool of troubleshooting steps the
// generator may select from. Guidance is always a subset of this list.
var ChecklistPool = []string{
	"Check and clean the affected sensor connector",
	"Verify wiring continuity with a multimeter",
	"Test sensor output voltage or resistance values",
	"Check for vacuum leaks around intake manifold",
	"Ensure proper fuel pressure at the rail",
	"Inspect ignition coils and wiring",
	"Check for software updates for the vehicle ECU",
	"Examine air intake system for obstructions",
	"Check exhaust system for blockages",
	"Inspect spark plug wires for damage",
	"Test battery voltage and charging system",
	"Check engine oil level and condition",
	"Inspect coolant hoses for cracks or leaks",
	"Verify proper operation of the EGR valve",
	"Check throttle position sensor (TPS) readings",
	"Measure manifold absolute pressure (MAP) sensor output",
	"Test oxygen sensor response times",
	"Check for loose or damaged ground connections",
	"Inspect PCV system for proper function",
	"Check for proper operation of the fuel injectors",
	"Examine the catalytic converter for clogging",
	"Inspect the transmission fluid level and condition",
	"Inspect wiring harnesses for corrosion or frayed insulation",
	"Verify fuses and relays for the related circuit",
	"Tighten loose electrical connectors or vacuum lines",
	"Replace clogged air or fuel filters if dirty",
	"Clean the throttle body or idle air control valve",
	"Inspect and clean battery terminals and ground points",
	"Check for cracked or disconnected vacuum hoses",
	"Ensure all sensors are properly seated and plugged in",
	"Use an OBD II scanner to clear and recheck codes after inspection",
	"Inspect and replace worn spark plugs or ignition coils",
	"Check coolant level and inspect for leaks around radiator or hoses",
	"Inspect serpentine or timing belts for cracks or wear",
	"Ensure the mass airflow (MAF) sensor is clean and connected",
	"Check brake fluid level and inspect for moisture contamination",
	"Inspect fuel pump relay and verify pressure at fuel rail",
	"Examine PCV valve for blockage or carbon buildup",
	"Inspect exhaust system for leaks or damaged oxygen sensors",
	"Check transmission fluid level and color for contamination",
	"Reset adaptive learning by disconnecting the battery for 10 minutes",
	"Inspect wheel speed sensors and ABS wiring for damage",
	"Check for TSBs (Technical Service Bulletins) related to the code",
	"Inspect the camshaft and crankshaft position sensors",
	"Verify proper operation of the vehicle's cooling fans",
	"Check for proper alignment of the timing belt or chain",
	"Inspect the fuel pressure regulator for leaks or malfunctions",
	"Check the operation of the vehicle's evaporative emissions system",
	"Inspect the condition of the vehicle's tires and tire pressure monitoring system (TPMS)",
	"Examine the condition of the vehicle's suspension components",
	"Inspect the condition of the vehicle's steering components",
	"Check the operation of the vehicle's HVAC system",
	"Inspect the condition of the vehicle's body and frame for rust or damage",
	"Check the operation of the vehicle's lighting system",
	"Inspect the condition of the vehicle's windshield wipers and washer system",
}
