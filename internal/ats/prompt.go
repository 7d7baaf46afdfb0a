package ats

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = `You are an expert ATS (Applicant Tracking System) analyst. Your role is to analyze resumes against job requirements and provide accurate, unbiased scoring and feedback. Return only a single valid JSON object. Do not include explanations, markdown, or text before or after the JSON.`

func analysisPrompt(resumeText string, job JobRequirement) string {
	return fmt.Sprintf(`Analyze this resume against the job requirements and provide a comprehensive ATS score.

###
Job Description:
%s

Required Skills: %s

Experience Requirement: %s

Required Qualifications: %s

###
Resume:
%s

###
Scoring rules:
- overallScore (0-100) must equal the weighted combination: skills 40%%, experience 30%%, qualifications 20%%, presentation 10%%.
- recommendation must follow the thresholds: "reject" below 40, "maybe" 40-59, "shortlist" 60-79, "strong_yes" 80 and above.
- every required skill must appear in exactly one of matchedSkills or missingSkills; same for qualifications.
- strengths and concerns must each hold 3 to 5 items.
- base every judgement only on the provided text; never invent experience.

Respond with JSON in exactly this structure:
{
  "overallScore": number,
  "overallFeedback": string,
  "matchingScores": {
    "skills": {"score": number, "matchedSkills": [string], "missingSkills": [string], "additionalSkills": [string]},
    "experience": {"score": number, "yearsFound": string, "feedback": string},
    "qualifications": {"score": number, "matched": [string], "missing": [string], "feedback": string}
  },
  "strengths": [string],
  "concerns": [string],
  "recommendation": "reject" | "maybe" | "shortlist" | "strong_yes"
}`,
		job.Description,
		strings.Join(job.Skills, ", "),
		job.Experience,
		strings.Join(job.Qualifications, ", "),
		resumeText,
	)
}
